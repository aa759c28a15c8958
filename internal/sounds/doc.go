// Package sounds manages the .wav library under the audio directory:
// listing, upload, deletion and traversal-safe name resolution.
package sounds
