package export

import (
	"html/template"

	"cvstudio/internal/cv"
)

// templateStyles 是三套内置模板的 CSS。字体与排版必须与前端预览匹配，
// 否则打印分页会和用户看到的不一致。
var templateStyles = map[cv.TemplateID]template.CSS{
	cv.TemplateModern: `
    .cv { font-family: 'Helvetica Neue', Arial, sans-serif; color: #1f2430; }
    .cv h1 { font-size: 28pt; margin: 0 0 6px; }
    .cv h2 { font-size: 13pt; text-transform: uppercase; letter-spacing: 1px;
             border-bottom: 2px solid #3388ff; padding-bottom: 4px; }
    .cv .entry-meta { color: #5a6270; font-size: 9pt; }
    .cv .skill { background: #eef4ff; border-radius: 10px; padding: 2px 10px; }
`,
	cv.TemplateClassic: `
    .cv { font-family: Georgia, 'Times New Roman', serif; color: #222; }
    .cv h1 { font-size: 26pt; margin: 0 0 6px; text-align: center; }
    .cv h2 { font-size: 13pt; border-bottom: 1px solid #999; padding-bottom: 3px; }
    .cv .entry-meta { font-style: italic; color: #555; font-size: 9pt; }
    .cv .skill { border: 1px solid #bbb; padding: 2px 10px; }
`,
	cv.TemplateCreative: `
    .cv { font-family: 'Trebuchet MS', Verdana, sans-serif; color: #2a2040; }
    .cv h1 { font-size: 30pt; margin: 0 0 6px; color: #7c3aed; }
    .cv h2 { font-size: 12pt; color: #7c3aed; border-left: 6px solid #7c3aed;
             padding-left: 10px; }
    .cv .entry-meta { color: #6b5b8a; font-size: 9pt; }
    .cv .skill { background: #f3e8ff; border-radius: 3px; padding: 2px 10px; }
`,
}

// pageTemplate 渲染分页后的整份简历。
// 每个 .page 是一个 overflow:hidden 的 A4 容器；页内容通过
// translateY(Offset) 负向平移，使第 N 页恰好露出第 N 个页高窗口。
var pageTemplate = template.Must(template.New("cv").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<style>
  html, body { margin: 0; padding: 0; background: white; }
  .page {
    width: {{.PageW}}px;
    height: {{.PageH}}px;  /* A4 @ 96 DPI */
    padding: {{.Margin}}px;
    box-sizing: border-box;
    overflow: hidden;
    page-break-after: always;
    position: relative;
  }
  .page:last-child { page-break-after: auto; }
  .shift { position: absolute; left: {{.Margin}}px; right: {{.Margin}}px; }
  .cv section { margin-top: 18px; }
  .cv .entry { margin-bottom: 14px; }
  .cv .entry h3 { margin: 0; font-size: 11pt; }
  .cv .entry p { margin: 4px 0 0; font-size: 10pt; }
  .cv .skills { display: flex; flex-wrap: wrap; gap: 6px; }
  .cv .skill { font-size: 9pt; }
  .cv .contact p { margin: 2px 0; font-size: 10pt; }
  .cv .contact img { width: 96px; height: 96px; object-fit: cover; border-radius: 6px; }
  @media print {
    @page { size: A4; margin: 0; }
    * { -webkit-print-color-adjust: exact !important; print-color-adjust: exact !important; }
  }
  {{.CSS}}
</style>
</head>
<body>
{{- $data := . }}
{{- range .Pages }}
<div class="page">
  <div class="shift" style="top: calc({{ $data.Margin }}px + {{ .Offset }}px);">
    <div class="cv">
      <h1>{{ $data.Title }}</h1>
      {{- range $data.Sections }}
      <section>
        <h2>{{ .Title }}</h2>
        {{- if eq .Kind "summary" }}
        <p>{{ .Summary }}</p>
        {{- else if eq .Kind "experience" }}
        {{- range .Experience }}
        <div class="entry">
          <h3>{{ .Title }}</h3>
          <p class="entry-meta">{{ .Company }} | {{ .Period }}</p>
          <p>{{ .Description }}</p>
        </div>
        {{- end }}
        {{- else if eq .Kind "education" }}
        {{- range .Education }}
        <div class="entry">
          <h3>{{ .Degree }}</h3>
          <p class="entry-meta">{{ .Institution }} | {{ .Period }}</p>
        </div>
        {{- end }}
        {{- else if eq .Kind "skills" }}
        <div class="skills">
          {{- range .Skills }}
          <span class="skill">{{ . }}</span>
          {{- end }}
        </div>
        {{- else if eq .Kind "projects" }}
        {{- range .Projects }}
        <div class="entry">
          <h3>{{ .Name }}</h3>
          <p class="entry-meta">{{ .Period }}{{ if .Link }} | {{ .Link }}{{ end }}</p>
          <p>{{ .Description }}</p>
        </div>
        {{- end }}
        {{- else if eq .Kind "contact" }}
        <div class="contact">
          {{- with .Contact }}
          {{- if .PhotoSrc }}<img src="{{ .PhotoSrc }}" alt="photo" />{{ end }}
          {{- if .Email }}<p>{{ .Email }}</p>{{ end }}
          {{- if .Phone }}<p>{{ .Phone }}</p>{{ end }}
          {{- if .Location }}<p>{{ .Location }}</p>{{ end }}
          {{- if .Website }}<p>{{ .Website }}</p>{{ end }}
          {{- end }}
        </div>
        {{- end }}
      </section>
      {{- end }}
    </div>
  </div>
</div>
{{- end }}
</body>
</html>
`))
