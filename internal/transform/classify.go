package transform

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"ffg-go/internal/model"
)

// extensionKinds maps lowercase file extensions (without the dot) to kinds.
var extensionKinds = map[string]model.Kind{
	"pdf": model.KindPDF,

	"jpg": model.KindImage, "jpeg": model.KindImage, "png": model.KindImage,
	"gif": model.KindImage, "bmp": model.KindImage, "webp": model.KindImage,

	"mp4": model.KindVideo, "webm": model.KindVideo, "avi": model.KindVideo, "mov": model.KindVideo,

	"mp3": model.KindAudio, "wav": model.KindAudio, "ogg": model.KindAudio,

	"zip": model.KindArchive, "rar": model.KindArchive, "tar": model.KindArchive, "gz": model.KindArchive,

	"js": model.KindCode, "ts": model.KindCode, "html": model.KindCode, "css": model.KindCode,
	"jsx": model.KindCode, "tsx": model.KindCode, "py": model.KindCode, "java": model.KindCode,
	"c": model.KindCode, "cpp": model.KindCode,

	"doc": model.KindDocument, "docx": model.KindDocument, "txt": model.KindDocument, "md": model.KindDocument,
}

// KindFromName classifies a file by its extension.
// Names without an extension, or with an unmapped one, are KindUnknown.
func KindFromName(name string) model.Kind {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	if ext == "" {
		return model.KindUnknown
	}
	if kind, ok := extensionKinds[strings.ToLower(ext)]; ok {
		return kind
	}
	return model.KindUnknown
}

// KindFromContent sniffs data and classifies it by the detected type's
// canonical extension. Used when a name alone is not enough.
func KindFromContent(data []byte) model.Kind {
	mt := mimetype.Detect(data)
	for ; mt != nil; mt = mt.Parent() {
		if kind := KindFromName("detected" + mt.Extension()); kind != model.KindUnknown {
			return kind
		}
	}
	return model.KindUnknown
}
