package render

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/covercluster/pkg/cluster"
)

func solid(side int, c color.NRGBA) image.Image {
	return imaging.New(side, side, c)
}

func rgba(img image.Image, x, y int) color.RGBA {
	r, g, b, a := img.At(x, y).RGBA()
	return color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
}

func TestPaint(t *testing.T) {
	red := color.NRGBA{R: 255, A: 255}
	blue := color.NRGBA{B: 255, A: 255}
	comp := cluster.Composition{
		Width:  30,
		Height: 20,
		Tiles: []cluster.Tile{
			{ID: "a", Image: solid(20, red), X: 0, Y: 0, Size: 20},
			{ID: "b", Image: solid(10, blue), X: 20, Y: 10, Size: 10},
			{ID: "missing", X: 20, Y: 0, Size: 10},
		},
	}

	img := Paint(comp, Options{})
	if got := img.Bounds(); got != image.Rect(0, 0, 30, 20) {
		t.Fatalf("bounds = %v, want 30x20", got)
	}

	tests := []struct {
		name string
		x, y int
		want color.RGBA
	}{
		{"first tile", 5, 5, color.RGBA{R: 255, A: 255}},
		{"second tile", 25, 15, color.RGBA{B: 255, A: 255}},
		{"background", 25, 5, color.RGBA{R: 20, G: 20, B: 20, A: 255}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rgba(img, tt.x, tt.y); got != tt.want {
				t.Errorf("pixel (%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestPaintReplacesPixels(t *testing.T) {
	// A half-transparent cover keeps its own color instead of blending
	// with the background, and the canvas stays opaque.
	comp := cluster.Composition{
		Width:  10,
		Height: 10,
		Tiles: []cluster.Tile{
			{ID: "faded", Image: solid(10, color.NRGBA{R: 200, G: 100, A: 64}), Size: 10},
		},
	}
	img := Paint(comp, Options{Background: color.White})
	if got, want := rgba(img, 5, 5), (color.RGBA{R: 200, G: 100, A: 255}); got != want {
		t.Errorf("pixel = %v, want %v", got, want)
	}
}

func TestPaintBackground(t *testing.T) {
	img := Paint(cluster.Composition{Width: 4, Height: 4}, Options{Background: color.White})
	if got := rgba(img, 2, 2); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("background = %v, want white", got)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.NRGBA
		wantErr bool
	}{
		{"#141414", color.NRGBA{20, 20, 20, 255}, false},
		{"ffffff", color.NRGBA{255, 255, 255, 255}, false},
		{"#f00", color.NRGBA{255, 0, 0, 255}, false},
		{"blue", color.NRGBA{}, true},
		{"#12345", color.NRGBA{}, true},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseColor(%q) should fail", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseColor(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestHex(t *testing.T) {
	c, _ := ParseColor("#141414")
	if got := Hex(c); got != "#141414" {
		t.Errorf("Hex() = %q", got)
	}
}

func TestFormats(t *testing.T) {
	tests := []struct {
		path        string
		want        Format
		contentType string
		wantErr     bool
	}{
		{"cluster.png", PNG, "image/png", false},
		{"out/cluster.JPG", JPEG, "image/jpeg", false},
		{"cluster.jpeg", JPEG, "image/jpeg", false},
		{"cluster.gif", "", "", true},
		{"cluster", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatFromPath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FormatFromPath() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("FormatFromPath() = %q, want %q", got, tt.want)
			}
			if !tt.wantErr && ContentType(got) != tt.contentType {
				t.Errorf("ContentType() = %q, want %q", ContentType(got), tt.contentType)
			}
		})
	}

	if f, err := ParseFormat("JPEG"); err != nil || f != JPEG {
		t.Errorf("ParseFormat(JPEG) = %q, %v", f, err)
	}
	if _, err := ParseFormat("svg"); err == nil {
		t.Error("ParseFormat(svg) should fail")
	}
}

func TestEncode(t *testing.T) {
	img := solid(8, color.NRGBA{G: 255, A: 255})
	for _, f := range Formats {
		t.Run(string(f), func(t *testing.T) {
			var buf bytes.Buffer
			if err := Encode(&buf, img, f); err != nil {
				t.Fatalf("Encode() error: %v", err)
			}
			back, err := imaging.Decode(&buf)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if back.Bounds().Dx() != 8 {
				t.Errorf("decoded width = %d", back.Bounds().Dx())
			}
		})
	}
	if err := Encode(&bytes.Buffer{}, img, "bmp"); err == nil {
		t.Error("Encode(bmp) should fail")
	}
}
