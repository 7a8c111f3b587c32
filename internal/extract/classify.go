package extract

import "strings"

// FileType is the extraction strategy selected for an uploaded rubric.
type FileType int

const (
	FileTypeUnsupported FileType = iota
	FileTypePDF
	FileTypeImage
)

func (t FileType) String() string {
	switch t {
	case FileTypePDF:
		return "pdf"
	case FileTypeImage:
		return "image"
	default:
		return "unsupported"
	}
}

var imageExts = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"gif":  true,
	"bmp":  true,
	"webp": true,
}

// Classify derives the extension of fileName (text after the last dot,
// case-insensitive) and maps it to an extraction strategy. Unknown
// extensions, and names without one, classify as unsupported; there is
// no failure case.
func Classify(fileName string) (FileType, string) {
	idx := strings.LastIndex(fileName, ".")
	if idx < 0 || idx == len(fileName)-1 {
		return FileTypeUnsupported, ""
	}
	ext := strings.ToLower(fileName[idx+1:])
	switch {
	case ext == "pdf":
		return FileTypePDF, ext
	case imageExts[ext]:
		return FileTypeImage, ext
	default:
		return FileTypeUnsupported, ext
	}
}
