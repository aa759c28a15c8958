// Package sysconf shells out to host tooling (timedatectl, netplan) and
// surfaces the outcome as a pass/fail result plus message. The host tools
// are opaque external systems; no configuration is generated here.
package sysconf
