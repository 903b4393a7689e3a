package view

import (
	"bytes"
	"html/template"
	"io"
)

var pageTmpl = template.Must(template.New("page").Parse(`<!doctype html>
<html lang="de">
  <head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <meta name="pitchflow-phase" content="{{.Phase}}" />
    {{if .Live}}<noscript><meta http-equiv="refresh" content="1" /></noscript>{{end}}
    <title>Pitch-Deck Generator</title>
    <style>
      * { box-sizing: border-box; }
      html, body { height: 100%; }
      body {
        margin: 0;
        min-height: 100vh;
        display: flex;
        align-items: center;
        justify-content: center;
        padding: 16px;
        font-family: Montserrat, ui-sans-serif, system-ui, -apple-system, Segoe UI, Roboto, Helvetica, Arial, sans-serif;
        color: #fff;
        background: linear-gradient(180deg, #db2777, #9333ea);
      }
      .card {
        width: 100%;
        max-width: 42rem;
        padding: 32px;
        border-radius: 16px;
        background: rgba(255, 255, 255, 0.10);
        backdrop-filter: blur(16px);
        box-shadow: 0 20px 25px -5px rgba(0, 0, 0, 0.25);
        text-align: center;
      }
      .brand { font-size: 2.5rem; font-weight: 800; letter-spacing: 0.04em; margin: 0 0 48px; }
      h2 { font-size: 1.875rem; margin: 0 0 32px; }
      p.lead { font-size: 1.125rem; margin: 0 0 32px; }
      .big { font-size: 2.25rem; font-weight: 700; margin: 0 0 16px; }
      form { display: flex; flex-direction: column; gap: 16px; margin: 0; }
      input[type=text] {
        width: 100%;
        padding: 10px 12px;
        border-radius: 8px;
        border: 1px solid rgba(255, 255, 255, 0.30);
        background: rgba(255, 255, 255, 0.20);
        color: #fff;
        text-align: center;
        font: inherit;
      }
      input[type=text]::placeholder { color: rgba(255, 255, 255, 0.5); }
      button, a.button {
        display: inline-block;
        width: 100%;
        padding: 12px 24px;
        border: 0;
        border-radius: 8px;
        background: #fff;
        color: #db2777;
        font: inherit;
        font-weight: 600;
        text-decoration: none;
        cursor: pointer;
      }
      a.button { max-width: 300px; margin-top: 16px; }
      button:disabled { opacity: 0.5; cursor: not-allowed; }
      .secondary { background: transparent; color: #fff; border: 1px solid rgba(255, 255, 255, 0.4); max-width: 300px; margin-top: 24px; }
      .notice { margin: 0 0 24px; padding: 12px; border-radius: 8px; background: rgba(0, 0, 0, 0.25); }
    </style>
  </head>
  <body>
    <main class="card">
      <div class="brand">pitchflow</div>

      {{if .Notice}}<div class="notice" role="alert" id="notice">{{.Notice}}</div>{{end}}

      {{if eq .Kind "form"}}
      <h2>Von der Idee zum Pitch-Deck in 3 Minuten</h2>
      <p class="lead">Gib hier deine Geschäftsidee ein, ein Satz genügt. Du kannst aber auch etwas ausführlicher beschreiben, was Du vor hast – wie Du magst.</p>
      <form id="idea-form" method="post" action="/submit">
        <input type="text" name="business-idea" id="idea" value="{{.Draft}}" placeholder="Deine Geschäftsidee..." autocomplete="off"{{if .Sending}} readonly{{end}} />
        <button type="submit" id="submit"{{if not .CanSubmit}} disabled{{end}}>{{.SubmitLabel}}</button>
      </form>
      {{else if eq .Kind "countdown"}}
      <p class="big" id="remaining">{{.Remaining}}</p>
      <p class="lead">Bitte warte einen Moment, dein Pitch-Deck wird erstellt</p>
      {{else if eq .Kind "complete"}}
      <p class="big">Fertig!</p>
      <p class="lead">Dein Pitch-Deck wurde erstellt</p>
      {{if .HasResult}}<a class="button" id="open-result" href="/result" target="_blank" rel="noopener">Hier geht's zum Ergebnis</a>{{end}}
      <form method="post" action="/reset">
        <button type="submit" class="secondary">Neue Idee</button>
      </form>
      {{end}}
    </main>

    <script>
      (function () {
        var phase = {{.Phase}};
        var notice = {{.Notice}};
        if (notice) {
          window.alert(notice);
        }

        var input = document.getElementById("idea");
        var submit = document.getElementById("submit");
        var form = document.getElementById("idea-form");
        var sending = phase === "submitting";
        var draftTimer = null;

        function sync() {
          if (submit) {
            submit.disabled = sending || input.value.trim() === "";
          }
        }

        if (input && !sending) {
          input.addEventListener("input", function () {
            sync();
            clearTimeout(draftTimer);
            draftTimer = setTimeout(function () {
              fetch("/draft", {
                method: "POST",
                headers: { "Content-Type": "application/json" },
                credentials: "same-origin",
                body: JSON.stringify({ text: input.value })
              }).catch(function () {});
            }, 250);
          });
        }
        if (form) {
          form.addEventListener("submit", function (ev) {
            if (sending || input.value.trim() === "") {
              ev.preventDefault();
              return;
            }
            sending = true;
            submit.disabled = true;
            submit.textContent = "Wird gesendet...";
          });
        }

        if (!window.WebSocket) {
          return;
        }
        var scheme = location.protocol === "https:" ? "wss://" : "ws://";
        var ws = new WebSocket(scheme + location.host + "/ws");
        ws.onmessage = function (msg) {
          var ev;
          try { ev = JSON.parse(msg.data); } catch (e) { return; }
          if (ev.type === "notice") {
            location.reload();
            return;
          }
          if (ev.type !== "state" || !ev.state) {
            return;
          }
          if (ev.state.phase !== phase) {
            location.reload();
            return;
          }
          var remaining = document.getElementById("remaining");
          if (remaining && ev.state.remaining) {
            remaining.textContent = ev.state.remaining;
          }
        };
      })();
    </script>
  </body>
</html>
`))

// Render writes the page for s.
func Render(w io.Writer, s Screen) error {
	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, s); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}
