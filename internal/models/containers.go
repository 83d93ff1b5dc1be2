package models

// ContainerConfig describes one blob-store container: its fixed name, the
// MIME types it accepts and the per-file size limit enforced before any
// network call.
type ContainerConfig struct {
	Name         string
	AllowedTypes []string
	MaxFileSize  int64
}

const (
	// MaxFileSize is the default upload limit; videos get MaxVideoSize.
	MaxFileSize  = 20 * 1024 * 1024
	MaxVideoSize = 100 * 1024 * 1024
)

var containerConfigs = map[MediaType]ContainerConfig{
	MediaTypeImage: {
		Name:         "myimages",
		AllowedTypes: []string{"image/jpeg", "image/png", "image/gif", "image/webp"},
		MaxFileSize:  MaxFileSize,
	},
	MediaTypeAudio: {
		Name:         "myaudio",
		AllowedTypes: []string{"audio/mpeg", "audio/wav", "audio/ogg", "audio/m4a"},
		MaxFileSize:  MaxFileSize,
	},
	MediaTypeVideo: {
		Name:         "myvideos",
		AllowedTypes: []string{"video/mp4", "video/webm", "video/ogg", "video/quicktime"},
		MaxFileSize:  MaxVideoSize,
	},
}

// MediaTypes is the fixed enumeration order used everywhere collections or
// containers are scanned.
var MediaTypes = []MediaType{MediaTypeImage, MediaTypeAudio, MediaTypeVideo}

// ContainerFor returns the container configuration for a media type.
func ContainerFor(t MediaType) (ContainerConfig, bool) {
	cfg, ok := containerConfigs[NormalizeMediaType(string(t))]
	return cfg, ok
}

// ContainerNames returns the three container names in fixed order.
func ContainerNames() []string {
	names := make([]string, 0, len(MediaTypes))
	for _, t := range MediaTypes {
		names = append(names, containerConfigs[t].Name)
	}
	return names
}

// TypeForContainer maps a container name back to its media type. Unknown
// container names map to the name itself, mirroring NormalizeMediaType.
func TypeForContainer(name string) MediaType {
	for t, cfg := range containerConfigs {
		if cfg.Name == name {
			return t
		}
	}
	return NormalizeMediaType(name)
}
