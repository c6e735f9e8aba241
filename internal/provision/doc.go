// SPDX-License-Identifier: MPL-2.0

// Package provision prepares the environment a target runs in.
//
// A DependencySet names what the target needs. Identifiers are "[kind:]name":
// plain names are executables looked up on the search path ("python3",
// "mosquitto_pub"), "python:<module>" names a module the configured
// interpreter must be able to import. Nothing is downloaded or installed;
// dependencies are located and verified.
//
// The main entry point is the Provisioner interface, implemented by
// PathProvisioner:
//
//	p := provision.NewPathProvisioner(provision.Options{SearchPaths: cfg.ResolvedSearchPaths()})
//	env, err := p.Prepare(ctx, provision.NewDependencySet(cfg.Dependencies...))
//	// env.Environ() is the child environment, env.LookPath finds the target.
//
// Preparation is idempotent. A PathProvisioner memoizes environments by key,
// and an optional on-disk Cache carries resolutions across processes, so
// repeated runs skip the PATH walk and interpreter probes for dependencies
// whose recorded location is still valid.
package provision
