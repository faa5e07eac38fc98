package hostagent

import "fmt"

// Loader loads a foreign-ABI plugin binary from path and returns the
// Plugin collaborator wrapping it. A real deployment supplies a Loader
// backed by cgo dlopen/dlsym calls into the plugin binary; that dynamic
// loading mechanism is an external concern (spec.md §1, "a plugin loader
// for the foreign ABI" is named as an external collaborator) and is not
// implemented by this package.
type Loader func(path string) (Plugin, error)

// UnimplementedLoader always fails; it is the placeholder a deployment
// must replace with a real dlopen-backed Loader before the host agent
// binary can serve an actual plugin.
func UnimplementedLoader(path string) (Plugin, error) {
	return nil, fmt.Errorf("hostagent: no plugin loader configured for %q", path)
}
