// Package config defines the settings shared by the bell-timer binaries and
// provides helpers to load, validate and save them in YAML format.
//
// The Config type covers the HTTP listen address, file locations, scheduler
// timings and the update folder URL. Unset fields receive defaults during
// validation, so a minimal settings file is enough to run the server.
package config
