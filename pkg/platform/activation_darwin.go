//go:build darwin

package platform

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework Cocoa
#import <Cocoa/Cocoa.h>

int
SetActivationPolicy(void) {
    [NSApp setActivationPolicy:NSApplicationActivationPolicyAccessory];
    return 0;
}
*/
import "C"

import "github.com/borgmon/reminder-clock/pkg/logging"

// SetActivationPolicy hides the dock icon so the app lives in the menu bar
// while its window is closed (macOS only).
func SetActivationPolicy() {
	logger := logging.WithComponent("platform")
	logger.Debug().Msg("switching to accessory activation policy")
	C.SetActivationPolicy()
}
