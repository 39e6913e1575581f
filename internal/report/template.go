package report

// DashboardTemplate is the HTML template for the dashboard page.
// Styles are inline so the page renders standalone (CLI --format html).
const DashboardTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{if .Report}}{{.Report.Header}} · {{end}}{{.Title}}</title>
<style>
  :root {
    --bg: #f9fafb;
    --card: #ffffff;
    --text: #1f2937;
    --muted: #6b7280;
    --border: #e5e7eb;
    --accent: #4f46e5;
    --accent-dark: #3730a3;
    --green: #22c55e;
    --red: #ef4444;
    --gray: #9ca3af;
  }
  * { margin: 0; padding: 0; box-sizing: border-box; }
  body {
    font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
    color: var(--text);
    background: var(--bg);
    line-height: 1.5;
    padding: 40px 16px;
  }
  h1 { font-size: 1.9rem; text-align: center; color: var(--accent); margin-bottom: 32px; }
  h2 { font-size: 1.5rem; text-align: center; color: var(--accent-dark); }
  h3 { font-size: 1.1rem; margin-bottom: 12px; }
  .panel { background: var(--card); border-radius: 12px; box-shadow: 0 4px 12px rgba(0,0,0,.08); }

  /* Query form */
  form.query { max-width: 900px; margin: 0 auto 32px; padding: 24px; display: flex; flex-wrap: wrap; gap: 12px; }
  form.query input { padding: 12px; border: 1px solid #d1d5db; border-radius: 8px; font-size: 1rem; }
  form.query input[name=stock_symbol] { flex: 1; min-width: 200px; }
  form.query button { background: var(--accent); color: #fff; border: 0; border-radius: 8px; padding: 12px 24px; font-size: 1rem; cursor: pointer; }
  form.query button:hover { background: var(--accent-dark); }
  .input-error { width: 100%; color: var(--red); font-size: .9rem; }

  /* Status */
  .status { text-align: center; font-size: 1.1rem; }
  .status.idle { color: var(--gray); }
  .status.loading { color: var(--muted); font-weight: 500; }
  .status.failed { color: var(--red); }

  /* Report */
  .report { max-width: 1100px; margin: 0 auto; display: grid; gap: 40px; }
  .summary { display: grid; grid-template-columns: repeat(auto-fill, minmax(200px, 1fr)); gap: 24px; }
  .field { padding: 20px; text-align: center; }
  .field .label { font-size: .85rem; color: var(--muted); }
  .field .value { font-size: 1.25rem; font-weight: 600; }
  .field .value.positive { color: #16a34a; }
  .field .value.negative { color: #dc2626; }
  .events { display: grid; grid-template-columns: repeat(auto-fit, minmax(300px, 1fr)); gap: 32px; }
  .event-list { padding: 16px; min-height: 48px; }
  .event { font-size: .9rem; padding: 4px 0; border-bottom: 1px solid var(--border); }
  .event:last-child { border-bottom: 0; }
  .cards { display: grid; gap: 16px; }
  .card { padding: 16px; border-left: 4px solid var(--accent); }
  .card a { color: var(--accent); font-weight: 600; text-decoration: none; }
  .card a:hover { text-decoration: underline; }
  .card .description { font-size: .9rem; color: #4b5563; margin-top: 4px; }
  .card .meta { display: flex; justify-content: space-between; align-items: center; flex-wrap: wrap; gap: 8px; margin-top: 8px; font-size: .75rem; color: var(--muted); }
  .pill { background: #f3f4f6; padding: 2px 8px; border-radius: 999px; }
  .badge { color: #fff; padding: 2px 8px; border-radius: 999px; font-size: .7rem; }
  .badge-green { background: var(--green); }
  .badge-red { background: var(--red); }
  .badge-gray { background: var(--gray); }
  .footer { text-align: center; margin-top: 40px; font-size: .75rem; color: var(--muted); }
</style>
</head>
<body data-phase="{{.Phase}}"{{if .RequestID}} data-request-id="{{.RequestID}}"{{end}}>
<h1>{{.Title}}</h1>

<form class="query panel" id="query-form" method="post" action="/analyze">
  <input type="text" name="stock_symbol" value="{{.Form.Symbol}}" placeholder="Stock Symbol (e.g., RELIANCE.NS)">
  <input type="date" name="start_date" value="{{.Form.StartDate}}">
  <input type="date" name="end_date" value="{{.Form.EndDate}}">
  <button type="submit">Analyze</button>
  {{- if .InputError}}
  <p class="input-error">{{.InputError}}</p>
  {{- end}}
</form>

{{if .Message}}<div class="status {{.Phase}}" id="status">{{.Message}}</div>{{end}}

{{with .Report}}
<main class="report">
  <h2 class="report-header">{{.Header}}</h2>

  <section class="summary" id="summary">
    {{- range .Summary}}
    <div class="field panel">
      <div class="label">{{.Label}}</div>
      <div class="value{{if .Class}} {{.Class}}{{end}}"{{if .Detail}} title="{{.Detail}}"{{end}}>{{.Value}}</div>
    </div>
    {{- end}}
  </section>

  <section class="events">
    <div>
      <h3>Dividends</h3>
      <div class="event-list panel" id="dividends">
        {{- range .Dividends}}
        <div class="event">{{.Text}}</div>
        {{- end}}
      </div>
    </div>
    <div>
      <h3>Stock Splits</h3>
      <div class="event-list panel" id="splits">
        {{- range .Splits}}
        <div class="event">{{.Text}}</div>
        {{- end}}
      </div>
    </div>
  </section>

  <section>
    <h3>News Highlights</h3>
    <div class="cards" id="news">
      {{- range .News}}
      <article class="card panel">
        {{if .URL}}<a href="{{.URL}}" target="_blank" rel="noreferrer">{{.Title}}</a>{{else}}<strong>{{.Title}}</strong>{{end}}
        {{if .Description}}<p class="description">{{.Description}}</p>{{end}}
        <div class="meta">
          <span class="pill source">{{.Source}}</span>
          <span class="pill published">{{.PublishedAt}}</span>
          <span class="badge badge-{{.Badge.Color}}" data-tone="{{.Badge.Tone}}">{{.Badge.Label}}</span>
        </div>
      </article>
      {{- end}}
    </div>
  </section>
</main>
{{end}}

<p class="footer">Generated {{.GeneratedAt}}</p>
{{if .Live}}<script src="/static/app.js" data-ws="{{.WSPath}}" defer></script>{{end}}
</body>
</html>
`
