package web

import (
	"html/template"
)

// pageData is the template context for the board page.
type pageData struct {
	Title   string
	Panels  []panelView
	Version string
}

type panelView struct {
	ID          string
	Title       string
	File        string
	URL         string
	DownloadURL string
	LastUpdated string
	FetchedAt   string
	Header      []string
	Rows        [][]string
	Error       string
}

var pageTemplate = template.Must(template.New("page").Parse(`<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>{{ .Title }}</title>
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <link rel="stylesheet" href="https://stackpath.bootstrapcdn.com/bootstrap/4.5.2/css/bootstrap.min.css">
  <link rel="stylesheet" href="https://cdn.datatables.net/1.10.21/css/jquery.dataTables.min.css">
  <style>
    body { padding-top: 16px; }
    .meta { font-size: 0.9rem; color: #555; margin-bottom: 8px; }
    .tab-pane { padding-top: 10px; }
  </style>
</head>
<body>
<div class="container-fluid">
  <h3 class="mb-3">{{ .Title }}</h3>

  <ul class="nav nav-tabs" id="tabs" role="tablist">
  {{- range $i, $p := .Panels }}
    <li class="nav-item">
      <a class="nav-link{{ if eq $i 0 }} active{{ end }}" id="{{ $p.ID }}-tab" data-toggle="tab" href="#{{ $p.ID }}"
         role="tab" aria-controls="{{ $p.ID }}" aria-selected="{{ if eq $i 0 }}true{{ else }}false{{ end }}">{{ $p.Title }}</a>
    </li>
  {{- end }}
  </ul>

  <div class="tab-content">
  {{- range $i, $p := .Panels }}
    <div class="tab-pane fade{{ if eq $i 0 }} show active{{ end }}" id="{{ $p.ID }}" role="tabpanel" aria-labelledby="{{ $p.ID }}-tab">
      <div class="meta">
        <strong>Source:</strong> <a href="{{ $p.URL }}" target="_blank" rel="noopener">{{ $p.File }}</a>
        | <strong>Last updated:</strong> <span class="last-updated">{{ $p.LastUpdated }}</span>
        | <strong>Fetched:</strong> {{ $p.FetchedAt }}
        | <a class="btn btn-sm btn-outline-secondary" href="{{ $p.DownloadURL }}">Download CSV</a>
      </div>
      {{- if $p.Error }}
      <div class="alert alert-danger">Error loading <a href="{{ $p.URL }}" target="_blank" rel="noopener">{{ $p.File }}</a>: {{ $p.Error }}</div>
      {{- else }}
      <table id="table_{{ $p.ID }}" class="display dataframe">
        <thead><tr>{{ range $p.Header }}<th>{{ . }}</th>{{ end }}</tr></thead>
        <tbody>
        {{- range $p.Rows }}
          <tr>{{ range . }}<td>{{ . }}</td>{{ end }}</tr>
        {{- end }}
        </tbody>
      </table>
      {{- end }}
    </div>
  {{- end }}
  </div>
  <footer class="text-muted small mt-3">csvboard {{ .Version }}</footer>
</div>

<script src="https://code.jquery.com/jquery-3.5.1.js"></script>
<script src="https://cdn.datatables.net/1.10.21/js/jquery.dataTables.min.js"></script>
<script src="https://cdn.jsdelivr.net/npm/popper.js@1.16.0/dist/umd/popper.min.js"></script>
<script src="https://stackpath.bootstrapcdn.com/bootstrap/4.5.2/js/bootstrap.min.js"></script>
<script>
  $(function () {
    $('table.dataframe').each(function () {
      $(this).addClass('table table-striped').DataTable({ pageLength: 25 });
    });
    $('.nav-tabs a').on('click', function (e) {
      e.preventDefault();
      $(this).tab('show');
    });
    if (location.hash) {
      $('.nav-tabs a[href="' + location.hash + '"]').tab('show');
    }
  });
</script>
</body>
</html>
`))
