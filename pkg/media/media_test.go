package media

import "testing"

func TestDetectKind(t *testing.T) {
	tests := []struct {
		path string
		kind Kind
	}{
		{"bg.jpg", KindImage},
		{"bg.JPEG", KindImage},
		{"bg.png", KindImage},
		{"bg.bmp", KindImage},
		{"bg.tiff", KindImage},
		{"bg.webp", KindImage},
		{"anim.gif", KindAnimatedImage},
		{"clip.mp4", KindVideo},
		{"clip.avi", KindVideo},
		{"clip.mkv", KindVideo},
		{"clip.MOV", KindVideo},
		{"clip.webm", KindVideo},
		{"clip.flv", KindVideo},
		{"notes.txt", KindUnknown},
		{"noext", KindUnknown},
	}
	for _, test := range tests {
		if got := DetectKind(test.path); got != test.kind {
			t.Errorf("%v: got %v, want %v", test.path, got, test.kind)
		}
	}
}
