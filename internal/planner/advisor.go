package planner

// remuxable lists the (source container, target container) pairs whose
// streams are assumed to be H.264/AAC compatible with both sides. Streams
// are not probed; anything not listed is re-encoded.
var remuxable = map[string]map[string]bool{
	"mkv": {"mp4": true},
	"mov": {"mp4": true},
	"mp4": {"mkv": true, "mov": true},
}

// CanRemux reports whether a file with extension sourceExt can be stream
// copied into target without re-encoding. Both arguments are lowercase
// extensions without the dot.
func CanRemux(sourceExt, target string) bool {
	return remuxable[sourceExt][target]
}
