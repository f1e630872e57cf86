// Package apps defines application descriptors and the registry that
// resolves qualified model references.
//
// An App names a set of models and the data root (an fs.FS or an OS
// directory) where its fixture and migration files live. Applications
// are registered once, usually at startup:
//
//	shop, err := apps.Register(&apps.App{
//		Name:   "github.com/acme/shop",
//		FS:     shopFS,
//		Models: []interface{}{&Egg{}, &Carton{}},
//	})
//
// The label defaults to the last path segment of the name ("shop"
// above) and keys everything else: model references ("shop.egg"),
// migration history rows and signal routing.
//
// The package-level functions operate on a process-wide registry.
// Tests construct private instances with NewRegistry to stay hermetic.
package apps
