//go:build !darwin

package platform

// IsAppActive always reports true; only macOS needs explicit activation.
func IsAppActive() bool {
	return true
}

// ActivateApp is a no-op outside macOS. Showing the window is enough there.
func ActivateApp() {}

// SetActivationPolicy is a no-op outside macOS.
func SetActivationPolicy() {}
