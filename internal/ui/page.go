package ui

import (
	"image/color"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"storyview/internal/story"
)

const pageTextSize = 28

// pageView renders the payload of the active item.
type pageView struct {
	bg      *canvas.Rectangle
	body    *fyne.Container
	caption *canvas.Text
	root    *fyne.Container

	current story.Page
}

func newPageView() *pageView {
	p := &pageView{
		bg:      canvas.NewRectangle(color.Black),
		body:    container.NewStack(),
		caption: canvas.NewText("", color.White),
	}
	p.caption.Alignment = fyne.TextAlignCenter
	p.root = container.NewStack(
		p.bg,
		container.NewBorder(nil, container.NewPadded(p.caption), nil, nil, p.body),
	)
	return p
}

func (p *pageView) Object() fyne.CanvasObject { return p.root }

// Show replaces the content with page.
func (p *pageView) Show(page story.Page) {
	p.current = page
	fg := story.TextColor(page.Background)

	p.bg.FillColor = page.Background
	p.bg.Refresh()
	p.caption.Text = page.Caption
	p.caption.Color = fg
	p.caption.Refresh()

	var body fyne.CanvasObject
	switch page.Kind {
	case story.KindText:
		body = textBody(page.Text, fg)
	case story.KindImage, story.KindGIF:
		body = imageBody(page.Source, fg)
	default:
		body = placeholderBody(theme.MediaVideoIcon(), page.Source, fg)
	}
	p.body.Objects = []fyne.CanvasObject{body}
	p.body.Refresh()
}

// Clear shows an empty page, used when the story has nothing to show.
func (p *pageView) Clear() {
	p.current = story.Page{}
	p.caption.Text = ""
	p.caption.Refresh()
	p.body.Objects = nil
	p.body.Refresh()
}

func textBody(text string, fg color.Color) fyne.CanvasObject {
	objects := []fyne.CanvasObject{layout.NewSpacer()}
	for _, line := range strings.Split(text, "\n") {
		t := canvas.NewText(line, fg)
		t.TextSize = pageTextSize
		t.TextStyle.Bold = true
		t.Alignment = fyne.TextAlignCenter
		objects = append(objects, t)
	}
	objects = append(objects, layout.NewSpacer())
	return container.NewVBox(objects...)
}

// imageBody loads local files only. Remote sources get a placeholder.
func imageBody(source string, fg color.Color) fyne.CanvasObject {
	if isRemote(source) {
		return placeholderBody(theme.FileImageIcon(), source, fg)
	}
	img := canvas.NewImageFromFile(source)
	img.FillMode = canvas.ImageFillContain
	img.ScaleMode = canvas.ImageScaleSmooth
	return img
}

func placeholderBody(icon fyne.Resource, source string, fg color.Color) fyne.CanvasObject {
	label := canvas.NewText(source, fg)
	label.Alignment = fyne.TextAlignCenter
	return container.NewCenter(container.NewVBox(
		container.NewGridWrap(fyne.NewSize(96, 96), widget.NewIcon(icon)),
		label,
	))
}

func isRemote(source string) bool {
	s := strings.ToLower(source)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
