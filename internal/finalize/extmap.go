package finalize

import "sort"

// extByCodec maps ffprobe codec names to file extensions. Codecs not listed
// here use the raw codec name as extension.
var extByCodec = map[string]string{
	"aac":     "m4a",
	"fdk_aac": "m4a",
	"alac":    "m4a",
	"mp3":     "mp3",
	"vorbis":  "ogg",
	"opus":    "ogg",
	"flac":    "flac",
}

// fallbackExtension is assumed when no prober binary is available.
const fallbackExtension = "mp3"

// ExtensionFor returns the extension for a detected codec name, falling back
// to the raw codec name when unmapped.
func ExtensionFor(codec string) string {
	if ext, ok := extByCodec[codec]; ok {
		return ext
	}
	return codec
}

// KnownExtensions returns the distinct extension set of the codec map,
// sorted for deterministic scanning order.
func KnownExtensions() []string {
	seen := make(map[string]struct{}, len(extByCodec))
	for _, ext := range extByCodec {
		seen[ext] = struct{}{}
	}
	exts := make([]string, 0, len(seen))
	for ext := range seen {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
