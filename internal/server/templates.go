package server

const widgetHTML = `<!doctype html>
<html lang="es">
  <head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <meta http-equiv="refresh" content="{{.RefreshSeconds}}" />
    <title>{{.Title}}</title>
    <link rel="stylesheet" href="/static/widget.css" />
  </head>
  <body>
    <main class="widget" data-state="{{.State}}">
      {{if .Notice}}<p id="notice" role="alert">{{.Notice}}</p>{{end}}
      <section id="display-view" class="{{.DisplayClass}}">
        <h1 id="countdown-title">{{.Title}}</h1>
        <p id="countdown-days">{{.Label}}</p>
      </section>
      {{if not .ReadOnly}}
      <section id="config-view" class="{{.ConfigClass}}">
        <form method="post" action="/save">
          <label for="row-selector">Fila</label>
          <input id="row-selector" name="row" type="number" min="1" step="1" value="{{.Selector}}" />
          <button id="save-button" type="submit">Guardar</button>
        </form>
        <form method="get" action="/sheet" target="_blank">
          <button id="open-sheet-button" type="submit">Abrir hoja</button>
        </form>
      </section>
      <form method="post" action="/toggle">
        <button id="toggle-button" class="toggle{{if eq .ToggleGlyph "✕"}} open{{end}}" type="submit">{{.ToggleGlyph}}</button>
      </form>
      {{end}}
    </main>
  </body>
</html>
`

const widgetCSS = `body { margin: 0; font-family: system-ui, sans-serif; background: transparent; }
.widget { position: relative; padding: 1rem; text-align: center; }
.panel { opacity: 1; transform: translateY(0); transition: opacity .3s ease, transform .3s ease; }
.panel.hidden { opacity: 0; transform: translateY(-4px); }
.panel.gone { display: none; }
#countdown-title { font-size: 1.1rem; margin: 0 0 .25rem; }
#countdown-days { font-size: 2rem; font-weight: 700; margin: 0; }
#notice { font-size: .85rem; margin: 0 0 .5rem; }
.toggle { position: absolute; top: .25rem; right: .25rem; border: 0; background: none; font-size: .6rem; cursor: pointer; }
.toggle.open { font-size: 1rem; }
`
