package render

import "html/template"

type pageData struct {
	Title     string
	Subtitle  string
	Author    string
	Date      string
	Lang      string
	FileName  string
	Body      template.HTML
	EventsURL string
}

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html{{ with .Lang }} lang="{{ . }}"{{ end }}>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{ .Title }}</title>
<style>
body { max-width: 46rem; margin: 2rem auto; padding: 0 1rem; font-family: sans-serif; line-height: 1.5; }
header.note-meta { border-bottom: 1px solid #ccc; margin-bottom: 1.5rem; }
header.note-meta p { color: #555; margin: 0.2rem 0; }
pre { overflow-x: auto; background: #f6f6f6; padding: 0.75rem; }
pre.note-text { white-space: pre-wrap; background: none; padding: 0; }
#note-error { display: none; background: #fde8e8; border: 1px solid #e0a0a0; padding: 0.5rem 0.75rem; white-space: pre-wrap; }
</style>
</head>
<body>
{{- if .EventsURL }}
<pre id="note-error"></pre>
{{- end }}
<header class="note-meta">
<h1>{{ .Title }}</h1>
{{- with .Subtitle }}
<p class="subtitle">{{ . }}</p>
{{- end }}
{{- if or .Author .Date }}
<p class="byline">{{ .Author }}{{ if and .Author .Date }}, {{ end }}{{ .Date }}</p>
{{- end }}
<p class="file">{{ .FileName }}</p>
</header>
<main>
{{ .Body }}
</main>
{{- with .EventsURL }}
<script>
(function () {
  var es = new EventSource({{ . }});
  es.addEventListener("note.updated", function () { location.reload(); });
  es.addEventListener("note.renamed", function () { location.reload(); });
  es.addEventListener("note.error", function (e) {
    var box = document.getElementById("note-error");
    box.textContent = JSON.parse(e.data).error;
    box.style.display = "block";
  });
})();
</script>
{{- end }}
</body>
</html>
`))
