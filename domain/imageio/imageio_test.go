package imageio

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"

	"github.com/soocke/boxmark/domain/annotate"
)

func TestFitToCanvas_SmallImageCentredWithPadding(t *testing.T) {
	src := imaging.New(640, 480, color.NRGBA{200, 10, 10, 255})
	canvas, pl := FitToCanvas(src, 1280, 720, false)

	require.Equal(t, image.Rect(0, 0, 1280, 720), canvas.Bounds())
	require.Equal(t, 1.0, pl.Scale)
	require.Equal(t, annotate.Pt(320, 120), pl.Offset)

	white := color.NRGBA{255, 255, 255, 255}
	require.Equal(t, white, canvas.NRGBAAt(10, 10), "left padding")
	require.Equal(t, white, canvas.NRGBAAt(1270, 710), "right padding")
	require.Equal(t, white, canvas.NRGBAAt(640, 60), "top padding")
	require.Equal(t, color.NRGBA{200, 10, 10, 255}, canvas.NRGBAAt(640, 360))
}

func TestFitToCanvas_LargeImageScaledDown(t *testing.T) {
	src := imaging.New(2560, 720, color.NRGBA{0, 0, 0, 255})
	canvas, pl := FitToCanvas(src, 1280, 720, false)

	require.Equal(t, image.Rect(0, 0, 1280, 720), canvas.Bounds())
	require.InDelta(t, 0.5, pl.Scale, 1e-9)
	require.Equal(t, annotate.Pt(0, 180), pl.Offset)
	require.Equal(t, color.NRGBA{255, 255, 255, 255}, canvas.NRGBAAt(640, 100))
	require.Equal(t, color.NRGBA{0, 0, 0, 255}, canvas.NRGBAAt(640, 360))
}

func TestFitToCanvas_UpscaleFillsAxis(t *testing.T) {
	src := imaging.New(320, 240, color.NRGBA{0, 0, 0, 255})
	_, pl := FitToCanvas(src, 1280, 720, true)
	require.InDelta(t, 3.0, pl.Scale, 1e-9)
	require.Equal(t, annotate.Pt(160, 0), pl.Offset)
}

func TestPlacement_SourceBoxesInvertsFit(t *testing.T) {
	pl := Placement{Scale: 0.5, Offset: annotate.Pt(0, 180)}
	got := pl.SourceBoxes([]annotate.Box{
		{TopLeft: annotate.Pt(100, 200), BottomRight: annotate.Pt(300, 400)},
		{TopLeft: annotate.Pt(0, 0), BottomRight: annotate.Pt(1280, 720)},
	}, annotate.Size{W: 2560, H: 720})
	require.Equal(t, annotate.Pt(200, 40), got[0].TopLeft)
	require.Equal(t, annotate.Pt(600, 440), got[0].BottomRight)
	// padding maps outside the source and is clamped
	require.Equal(t, annotate.Pt(0, 0), got[1].TopLeft)
	require.Equal(t, annotate.Pt(2560, 720), got[1].BottomRight)
}

func TestListImages_FiltersAndSorts(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.PNG", "a.jpg", "notes.txt", "c.webp", "d.json"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.png"), 0o755))

	files, err := ListImages(dir)
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(dir, "a.jpg"),
		filepath.Join(dir, "b.PNG"),
		filepath.Join(dir, "c.webp"),
	}, files)
}

func TestListImages_MissingDir(t *testing.T) {
	_, err := ListImages(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}

func TestLoad_RoundTripPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.png")
	require.NoError(t, imaging.Save(imaging.New(30, 20, color.NRGBA{1, 2, 3, 255}), path))

	img, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, annotate.Size{W: 30, H: 20}, annotate.SizeOf(img))
}

func TestLoad_RejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.jpg")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0o644))
	_, err := Load(path)
	require.Error(t, err)
}

func TestPersister_WritesFrameAndRecord(t *testing.T) {
	dir := t.TempDir()
	p := NewPersister(PersistOptions{Dir: dir, Format: FormatJPEG, JPEGQuality: 80}, nil)
	frame := imaging.New(64, 36, color.NRGBA{255, 255, 255, 255})
	ann := annotate.Annotation{Image: "photo.jpeg", Boxes: []annotate.Box{
		{TopLeft: annotate.Pt(1, 2), BottomRight: annotate.Pt(30, 20)},
	}}

	saved, err := p.Save("photo.jpeg", frame, ann, Placement{Scale: 1}, annotate.Size{W: 64, H: 36})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "photo.jpeg.jpg"), saved.ImagePath)
	require.Equal(t, filepath.Join(dir, "photo.jpeg.json"), saved.JSONPath)

	raw, err := os.ReadFile(saved.JSONPath)
	require.NoError(t, err)
	require.JSONEq(t, `{"image":"photo.jpeg","boxes":[[[1,2],[30,20]]]}`, string(raw))

	img, err := Load(saved.ImagePath)
	require.NoError(t, err)
	require.Equal(t, annotate.Size{W: 64, H: 36}, annotate.SizeOf(img))
}

func TestPersister_EmptyAnnotationWritesEmptyList(t *testing.T) {
	dir := t.TempDir()
	p := NewPersister(PersistOptions{Dir: filepath.Join(dir, "out")}, nil)
	saved, err := p.Save("x.png", imaging.New(4, 4, color.NRGBA{}), annotate.Annotation{Image: "x.png"}, Placement{Scale: 1}, annotate.Size{W: 4, H: 4})
	require.NoError(t, err)

	rec, err := ReadRecord(saved.JSONPath)
	require.NoError(t, err)
	require.Equal(t, "x.png", rec.Image)
	require.NotNil(t, rec.Boxes)
	require.Empty(t, rec.Boxes)
}

func TestPersister_RecordNamesSourceImage(t *testing.T) {
	dir := t.TempDir()
	p := NewPersister(PersistOptions{Dir: dir, Format: FormatPNG}, nil)
	frame := imaging.New(4, 4, color.NRGBA{})

	saved, err := p.Save("/in/cat.jpg", frame, annotate.Annotation{Image: "cat.jpg"}, Placement{Scale: 1}, annotate.Size{W: 4, H: 4})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "cat.jpg.png"), saved.ImagePath)

	rec, err := ReadRecord(saved.JSONPath)
	require.NoError(t, err)
	require.Equal(t, "cat.jpg", rec.Image)
}

func TestPersister_SameStemDifferentExtensionKeptApart(t *testing.T) {
	dir := t.TempDir()
	p := NewPersister(PersistOptions{Dir: dir}, nil)
	frame := imaging.New(4, 4, color.NRGBA{})
	one := []annotate.Box{{TopLeft: annotate.Pt(0, 0), BottomRight: annotate.Pt(1, 1)}}
	two := []annotate.Box{
		{TopLeft: annotate.Pt(0, 0), BottomRight: annotate.Pt(2, 2)},
		{TopLeft: annotate.Pt(1, 1), BottomRight: annotate.Pt(3, 3)},
	}

	a, err := p.Save("a.jpg", frame, annotate.Annotation{Image: "a.jpg", Boxes: one}, Placement{Scale: 1}, annotate.Size{W: 4, H: 4})
	require.NoError(t, err)
	b, err := p.Save("a.png", frame, annotate.Annotation{Image: "a.png", Boxes: two}, Placement{Scale: 1}, annotate.Size{W: 4, H: 4})
	require.NoError(t, err)
	require.NotEqual(t, a.ImagePath, b.ImagePath)
	require.NotEqual(t, a.JSONPath, b.JSONPath)

	recA, err := ReadRecord(a.JSONPath)
	require.NoError(t, err)
	require.Equal(t, "a.jpg", recA.Image)
	require.Len(t, recA.Boxes, 1)
	recB, err := ReadRecord(b.JSONPath)
	require.NoError(t, err)
	require.Equal(t, "a.png", recB.Image)
	require.Len(t, recB.Boxes, 2)
}

func TestPersister_ExportsSourceBoxes(t *testing.T) {
	dir := t.TempDir()
	p := NewPersister(PersistOptions{Dir: dir, ExportSourceBoxes: true}, nil)
	ann := annotate.Annotation{Boxes: []annotate.Box{{TopLeft: annotate.Pt(320, 120), BottomRight: annotate.Pt(420, 220)}}}
	saved, err := p.Save("scan.png", imaging.New(8, 8, color.NRGBA{}), ann, Placement{Scale: 1, Offset: annotate.Pt(320, 120)}, annotate.Size{W: 640, H: 480})
	require.NoError(t, err)

	rec, err := ReadRecord(saved.JSONPath)
	require.NoError(t, err)
	require.Len(t, rec.SourceBoxes, 1)
	require.Equal(t, annotate.Pt(0, 0), rec.SourceBoxes[0].TopLeft)
	require.Equal(t, annotate.Pt(100, 100), rec.SourceBoxes[0].BottomRight)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" JPEG ")
	require.NoError(t, err)
	require.Equal(t, FormatJPEG, f)
	_, err = ParseFormat("gif")
	require.Error(t, err)
}
