//go:build darwin

package platform

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework Cocoa -framework AppKit
#import <Cocoa/Cocoa.h>
#import <AppKit/AppKit.h>

static int appIsActive(void) {
    return [NSApp isActive] ? 1 : 0;
}

static void bringToFront(void) {
    [NSApp activateIgnoringOtherApps:YES];
    [NSApp requestUserAttention:NSCriticalRequest];
}
*/
import "C"

import "github.com/borgmon/reminder-clock/pkg/logging"

// IsAppActive reports whether the app currently has focus.
func IsAppActive() bool {
	return C.appIsActive() == 1
}

// ActivateApp pulls the app in front of other apps and asks for the user's
// attention. Must run on the main thread.
func ActivateApp() {
	logger := logging.WithComponent("platform")
	logger.Debug().Msg("activating app for alarm")
	C.bringToFront()
}
