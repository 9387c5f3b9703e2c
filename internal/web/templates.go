package web

import (
	"html/template"
	"strconv"
	"strings"
)

var funcMap = template.FuncMap{
	"num": func(v float64) string {
		return strconv.FormatFloat(v, 'f', -1, 64)
	},
	"translate": func(x, y float64) template.CSS {
		return template.CSS("transform: translate(" +
			strconv.FormatFloat(x, 'f', 2, 64) + "px, " +
			strconv.FormatFloat(y, 'f', 2, 64) + "px)")
	},
	"lines": func(ls []string) string { return strings.Join(ls, "\n") },
	"half":  func(v float64) float64 { return v / 2 },
	"neg":   func(v float64) float64 { return -v },
	"add":   func(a, b float64) float64 { return a + b },
}

var pageTmpl = template.Must(template.New("page").Funcs(funcMap).Parse(tmplPage))

const tmplPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width,initial-scale=1">
<title>{{.View.Selection.Y.Label}} vs {{.View.Selection.X.Label}}</title>
<style>
body{font-family:sans-serif;margin:24px;color:#222}
h1{font-size:18px;font-weight:600;margin:0 0 12px}
.downloads{font-size:12px;margin-bottom:8px}
.downloads a{color:#1f6feb;margin-right:12px;text-decoration:none}
#scatter{position:relative}
.node{transition:transform {{.Duration}}ms ease-in-out}
.node circle{fill:{{.Fill}};opacity:{{.Opacity}};stroke:#e3a5b1}
.node text{font-size:10px;font-weight:700;fill:#fff;text-anchor:middle;dominant-baseline:central;pointer-events:none}
.tick{transition:transform {{.Duration}}ms ease-in-out,opacity {{.Duration}}ms ease-in-out}
.tick line,.domain{stroke:#333}
.tick text{font-size:10px;fill:#333}
.x-axis .tick text{text-anchor:middle}
.y-axis .tick text{text-anchor:end;dominant-baseline:central}
.label{cursor:pointer;text-anchor:middle;font-size:14px}
.label.active{font-weight:700;fill:#000}
.label.inactive{font-weight:400;fill:#aaa}
.label.inactive:hover{fill:#555}
.tooltip{position:absolute;pointer-events:none;background:#333;color:#fff;padding:6px 8px;border-radius:4px;font-size:12px;line-height:1.4;white-space:pre;opacity:0;transition:opacity .15s}
.tooltip.show{opacity:.9}
</style>
</head>
<body>
<h1>US States: health risks vs demographics</h1>
<div class="downloads">
<a id="dl-png" href="/chart.png?x={{.View.Selection.X}}&y={{.View.Selection.Y}}">PNG</a>
<a id="dl-svg" href="/chart.svg?x={{.View.Selection.X}}&y={{.View.Selection.Y}}">SVG</a>
</div>
<div id="scatter">
<svg width="{{num .View.Layout.Width}}" height="{{num .View.Layout.Height}}">
<g transform="translate({{num .View.Layout.Margin.Left}},{{num .View.Layout.Margin.Top}})">
<g class="x-axis" transform="translate(0,{{num .InnerHeight}})">
<line class="domain" x1="0" x2="{{num .InnerWidth}}" y1="0" y2="0"></line>
<g class="ticks">{{range .View.XAxis.Ticks}}<g class="tick" data-key="{{.Text}}" data-value="{{num .Value}}" style="{{translate .Pos 0}}"><line y2="6"></line><text y="18">{{.Text}}</text></g>{{end}}</g>
</g>
<g class="y-axis">
<line class="domain" x1="0" x2="0" y1="0" y2="{{num .InnerHeight}}"></line>
<g class="ticks">{{range .View.YAxis.Ticks}}<g class="tick" data-key="{{.Text}}" data-value="{{num .Value}}" style="{{translate 0 .Pos}}"><line x2="-6"></line><text x="-9">{{.Text}}</text></g>{{end}}</g>
</g>
<g class="nodes">{{range $i, $p := .View.Points}}
<g class="node" data-index="{{$i}}" data-tooltip="{{lines $p.Tooltip}}" style="{{translate $p.CX $p.CY}}"><circle r="{{num $.View.Layout.Radius}}"></circle><text>{{$p.Abbr}}</text></g>{{end}}
</g>
<g class="x-labels" transform="translate({{num (half .InnerWidth)}},{{num (add .InnerHeight 20)}})">{{range .View.XAxis.Labels}}
<text class="label {{.Class}}" data-axis="x" data-value="{{.Value}}" x="0" y="{{num .Offset}}">{{.Text}}</text>{{end}}
</g>
<g class="y-labels" transform="rotate(-90)">{{range .View.YAxis.Labels}}
<text class="label {{.Class}}" data-axis="y" data-value="{{.Value}}" x="{{num (neg (half $.InnerHeight))}}" y="{{num (neg .Offset)}}">{{.Text}}</text>{{end}}
</g>
</g>
</svg>
<div class="tooltip"></div>
</div>
<script>
(function () {
  var state = {x: {{.View.Selection.X}}, y: {{.View.Selection.Y}}};
  var scales = {x: {{.View.XAxis.Scale}}, y: {{.View.YAxis.Scale}}};
  var duration = {{.Duration}};
  var root = document.getElementById("scatter");
  var tip = root.querySelector(".tooltip");
  var svgNS = "http://www.w3.org/2000/svg";

  function tr(x, y) { return "translate(" + x + "px, " + y + "px)"; }
  function place(axis, p) { return axis === "x" ? tr(p, 0) : tr(0, p); }

  function scaleFn(s) {
    var d = s.domain, r = s.range;
    return function (v) {
      if (d[1] === d[0]) { return (r[0] + r[1]) / 2; }
      return r[0] + (v - d[0]) / (d[1] - d[0]) * (r[1] - r[0]);
    };
  }

  function newTick(axis, t) {
    var g = document.createElementNS(svgNS, "g");
    g.setAttribute("class", "tick");
    g.dataset.key = t.text;
    g.dataset.value = t.value;
    var line = document.createElementNS(svgNS, "line");
    var text = document.createElementNS(svgNS, "text");
    if (axis === "x") { line.setAttribute("y2", 6); text.setAttribute("y", 18); }
    else { line.setAttribute("x2", -6); text.setAttribute("x", -9); }
    text.textContent = t.text;
    g.appendChild(line);
    g.appendChild(text);
    return g;
  }

  // moveTicks keys ticks by label. Kept ticks slide to their new place,
  // entering ticks start where the old scale puts them, leaving ticks slide
  // along the new scale while fading and are removed afterwards.
  function moveTicks(group, axis, ticks, from, to) {
    var oldScale = scaleFn(from), newScale = scaleFn(to);
    var existing = {};
    group.querySelectorAll(".tick").forEach(function (n) { existing[n.dataset.key] = n; });

    ticks.forEach(function (t) {
      var g = existing[t.text];
      if (g) {
        delete existing[t.text];
        g.classList.remove("exit");
      } else {
        g = newTick(axis, t);
        g.style.transform = place(axis, oldScale(t.value));
        g.style.opacity = 0;
        group.appendChild(g);
        g.getBoundingClientRect();
      }
      g.style.transform = place(axis, t.pos);
      g.style.opacity = 1;
    });

    Object.keys(existing).forEach(function (k) {
      var g = existing[k];
      g.classList.add("exit");
      g.style.transform = place(axis, newScale(+g.dataset.value));
      g.style.opacity = 0;
      setTimeout(function () {
        if (g.classList.contains("exit")) { g.remove(); }
      }, duration);
    });
  }

  function apply(view) {
    root.querySelectorAll(".node").forEach(function (n) {
      var p = view.points[+n.dataset.index];
      n.style.transform = tr(p.cx, p.cy);
      n.dataset.tooltip = p.tooltip.join("\n");
    });
    moveTicks(root.querySelector(".x-axis .ticks"), "x", view.x_axis.ticks, scales.x, view.x_axis.scale);
    moveTicks(root.querySelector(".y-axis .ticks"), "y", view.y_axis.ticks, scales.y, view.y_axis.scale);
    scales.x = view.x_axis.scale;
    scales.y = view.y_axis.scale;
    [view.x_axis, view.y_axis].forEach(function (a) {
      a.labels.forEach(function (l) {
        var el = root.querySelector('.label[data-axis="' + l.axis + '"][data-value="' + l.value + '"]');
        el.classList.toggle("active", l.active);
        el.classList.toggle("inactive", !l.active);
      });
    });
    var q = "?x=" + state.x + "&y=" + state.y;
    document.getElementById("dl-png").href = "/chart.png" + q;
    document.getElementById("dl-svg").href = "/chart.svg" + q;
    history.replaceState(null, "", q);
  }

  root.querySelectorAll(".label").forEach(function (el) {
    el.addEventListener("click", function () {
      var axis = el.dataset.axis, value = el.dataset.value;
      if (state[axis] === value) { return; }
      var prev = state[axis];
      state[axis] = value;
      fetch("/api/view?x=" + state.x + "&y=" + state.y)
        .then(function (r) {
          if (!r.ok) { throw new Error("view request failed: HTTP " + r.status); }
          return r.json();
        })
        .then(apply)
        .catch(function (err) {
          state[axis] = prev;
          console.error(err);
        });
    });
  });

  root.querySelectorAll(".node").forEach(function (n) {
    n.addEventListener("mouseover", function (ev) {
      tip.textContent = n.dataset.tooltip;
      var box = root.getBoundingClientRect();
      tip.style.left = (ev.clientX - box.left + 12) + "px";
      tip.style.top = (ev.clientY - box.top - 12) + "px";
      tip.classList.add("show");
    });
    n.addEventListener("mouseout", function () { tip.classList.remove("show"); });
  });
})();
</script>
</body>
</html>
`
