package export

// A4 @ 96 DPI，与前端画布一致。
const (
	PageWidthPx  = 794.0
	PageHeightPx = 1122.0
	PageMarginPx = 48.0
)

// Page 是分页计划中的一页。Offset 是该页内容副本的垂直位移：
// 第一页为 0，之后每页向上偏移一个页高的累计值（负数）。
type Page struct {
	Offset float64
}

// PlanPages 把总高度为 contentHeight 的内容排进高度为 pageHeight 的页面：
// 只要剩余高度超过一页，就再排一页，并把内容位移推进一个页高，
// 直到余量放得下为止。内容不超过一页时恰好返回一页。
func PlanPages(contentHeight, pageHeight float64) []Page {
	pages := []Page{{Offset: 0}}
	if pageHeight <= 0 || contentHeight <= pageHeight {
		return pages
	}

	remaining := contentHeight
	offset := -pageHeight
	for remaining > pageHeight {
		pages = append(pages, Page{Offset: offset})
		remaining -= pageHeight
		offset -= pageHeight
	}
	return pages
}
