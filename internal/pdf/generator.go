package pdf

import (
	"fmt"
	"io"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

const (
	// A4 纸张尺寸（英寸），与前端预览的 794x1122px@96dpi 对应。
	pageWidthInches  = 8.27
	pageHeightInches = 11.69

	renderTimeout = 30 * time.Second
)

// Result 承载一次渲染产物：最终 PDF 与首页预览截图。
type Result struct {
	PDF     []byte
	Preview []byte
}

// RenderHTML 在无头浏览器中渲染 HTML，返回 PDF 字节与首页 PNG 截图。
func RenderHTML(htmlContent string) (*Result, error) {
	launch := launcher.New().
		Headless(true).
		NoSandbox(true)

	if path, ok := launcher.LookPath(); ok {
		launch = launch.Bin(path)
	}

	browserURL, err := launch.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch chromium: %w", err)
	}
	defer launch.Cleanup()

	browser := rod.New().ControlURL(browserURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	defer func() {
		_ = browser.Close()
	}()

	page, err := browser.Timeout(renderTimeout).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	defer func() {
		_ = page.Close()
	}()

	page = page.Timeout(renderTimeout)
	if err := page.SetDocumentContent(htmlContent); err != nil {
		return nil, fmt.Errorf("set document content: %w", err)
	}

	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait load: %w", err)
	}

	pdfBytes, err := printToPDF(page)
	if err != nil {
		return nil, err
	}

	preview, err := captureFirstPage(page)
	if err != nil {
		return nil, err
	}

	return &Result{PDF: pdfBytes, Preview: preview}, nil
}

func printToPDF(page *rod.Page) ([]byte, error) {
	width := pageWidthInches
	height := pageHeightInches

	reader, err := page.PDF(&proto.PagePrintToPDF{
		PrintBackground:   true,
		PreferCSSPageSize: true,
		PaperWidth:        &width,
		PaperHeight:       &height,
	})
	if err != nil {
		return nil, fmt.Errorf("export pdf: %w", err)
	}
	defer func() {
		_ = reader.Close()
	}()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read pdf bytes: %w", err)
	}
	return data, nil
}

// captureFirstPage 截取第一页区域的 PNG，用作列表页缩略预览。
func captureFirstPage(page *rod.Page) ([]byte, error) {
	shot, err := page.Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
		Clip: &proto.PageViewport{
			X:      0,
			Y:      0,
			Width:  794,
			Height: 1122,
			Scale:  0.5,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("capture preview screenshot: %w", err)
	}
	return shot, nil
}
