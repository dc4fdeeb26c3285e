package hub

import (
	"html/template"
	"net/http"
)

// ClientScript renders hub frames as stacked notifications. It expects a
// global TOAST_WS_PATH naming the WebSocket endpoint.
const ClientScript = `
<script>
(function() {
    'use strict';

    var reconnectDelay = 1000;
    var maxReconnectDelay = 30000;
    var ws = null;
    var nodes = {};

    function container() {
        var c = document.getElementById('toast-container');
        if (!c) {
            c = document.createElement('div');
            c.id = 'toast-container';
            c.style.cssText = 'position:fixed;top:16px;right:16px;display:flex;flex-direction:column;gap:8px;z-index:999999;font-family:sans-serif;';
            document.body.appendChild(c);
        }
        return c;
    }

    var colors = {success: '#2e7d32', warning: '#ed6c02', error: '#d32f2f', info: '#0288d1'};

    function render(t) {
        var el = nodes[t.key];
        if (!el) {
            el = document.createElement('div');
            el.style.cssText = 'min-width:260px;max-width:360px;padding:12px 16px;border-radius:6px;color:#fff;box-shadow:0 2px 8px rgba(0,0,0,.25);white-space:pre-wrap;';
            nodes[t.key] = el;
            container().appendChild(el);
        }
        el.style.background = colors[t.level] || colors.info;
        el.textContent = '';

        if (t.title) {
            var title = document.createElement('strong');
            title.textContent = t.title;
            el.appendChild(title);
            el.appendChild(document.createElement('br'));
        }
        el.appendChild(document.createTextNode(t.message));

        if (t.actionLabel) {
            var btn = document.createElement('button');
            btn.textContent = t.actionLabel;
            btn.style.cssText = 'margin-left:12px;';
            btn.onclick = function() { send({action: 'action', key: t.key, id: t.actionID}); };
            el.appendChild(btn);
        }
        if (t.closable) {
            var x = document.createElement('button');
            x.textContent = '×';
            x.style.cssText = 'float:right;background:none;border:none;color:#fff;cursor:pointer;';
            x.onclick = function() { send({action: 'close', key: t.key}); };
            el.insertBefore(x, el.firstChild);
        }
    }

    function remove(key) {
        var el = nodes[key];
        if (el) {
            el.remove();
            delete nodes[key];
        }
    }

    function send(msg) {
        if (ws && ws.readyState === WebSocket.OPEN) {
            ws.send(JSON.stringify(msg));
        }
    }

    function connect() {
        var protocol = location.protocol === 'https:' ? 'wss:' : 'ws:';
        ws = new WebSocket(protocol + '//' + location.host + TOAST_WS_PATH);

        ws.onopen = function() {
            reconnectDelay = 1000;
        };

        ws.onmessage = function(e) {
            var msg;
            try {
                msg = JSON.parse(e.data);
            } catch (err) {
                return;
            }

            switch (msg.action) {
                case 'snapshot':
                    Object.keys(nodes).forEach(remove);
                    (msg.toasts || []).forEach(render);
                    break;
                case 'paint':
                case 'repaint':
                    render(msg);
                    break;
                case 'remove':
                    remove(msg.key);
                    break;
            }
        };

        ws.onclose = function() {
            setTimeout(function() {
                reconnectDelay = Math.min(reconnectDelay * 2, maxReconnectDelay);
                connect();
            }, reconnectDelay);
        };

        ws.onerror = function() {
            ws.close();
        };
    }

    if (document.readyState === 'loading') {
        document.addEventListener('DOMContentLoaded', connect);
    } else {
        connect();
    }
})();
</script>
`

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<h1>{{.Title}}</h1>
<p>Notifications sent to this server appear in the top right corner.</p>
<script>var TOAST_WS_PATH = {{.WSPath}};</script>
{{.Script}}
</body>
</html>
`))

// PageHandler serves a minimal page that connects to the hub at wsPath and
// displays notifications.
func PageHandler(wsPath string) http.Handler {
	data := struct {
		Title  string
		WSPath string
		Script template.HTML
	}{
		Title:  "toastd",
		WSPath: wsPath,
		Script: template.HTML(ClientScript),
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := pageTemplate.Execute(w, data); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}
