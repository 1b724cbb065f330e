package health

import (
	"encoding/json"
	"fmt"
	"strings"
)

// RenderDashboardHTML returns the status page served at GET /. The current
// health payload is embedded so the page renders without a round trip; the
// page script then polls /health/json a few times before pausing itself.
func RenderDashboardHTML(health CollectResult) string {
	payload, _ := json.Marshal(map[string]interface{}{
		"status":       health.Status,
		"runtime":      health.Runtime,
		"traffic":      health.Traffic,
		"dependencies": health.Dependencies,
	})
	// Escape for embedding in a JS template literal.
	embedded := strings.NewReplacer("\\", "\\\\", "`", "\\`", "$", "\\$").Replace(string(payload))

	depRows := ""
	for _, dep := range []string{"database", "redis", "frontend"} {
		d := health.Dependencies[dep]
		cls := "down"
		if d.Status == "connected" || d.Status == "reachable" {
			cls = "up"
		}
		ping := "--"
		if d.PingMs != nil {
			ping = fmt.Sprintf("%v ms", d.PingMs)
		}
		label := strings.ToUpper(dep[:1]) + dep[1:]
		depRows += fmt.Sprintf(
			`<tr><td>%s</td><td><span id="dep-%s" class="state %s">%s</span></td><td id="ping-%s" class="num">%s</td></tr>`,
			label, dep, cls, d.Status, dep, ping)
	}

	headline := "All systems operational"
	if health.Status != "ok" {
		headline = "Service degraded"
	}

	return `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Chit Fund · API Status</title>
<style>
  body { margin: 0; font-family: ui-sans-serif, system-ui, sans-serif; background: #f4f7f6; color: #143c35; }
  .wrap { max-width: 880px; margin: 48px auto; padding: 0 24px; }
  h1 { font-size: 28px; margin: 0; }
  h1 small { display: block; font-size: 13px; font-weight: 400; color: #5c7a73; margin-top: 6px; }
  .banner { margin: 24px 0; padding: 14px 20px; border-radius: 10px; font-weight: 600; }
  .banner.ok { background: #d9efe7; color: #0f766e; }
  .banner.issue { background: #fde5e5; color: #b42318; }
  .panel { background: #fff; border: 1px solid #e1e9e6; border-radius: 10px; padding: 20px 24px; margin-bottom: 20px; }
  .panel h2 { font-size: 13px; text-transform: uppercase; letter-spacing: 1px; color: #5c7a73; margin: 0 0 14px; }
  table { width: 100%; border-collapse: collapse; font-size: 14px; }
  td { padding: 8px 0; border-top: 1px solid #eef3f1; }
  td:first-child { color: #5c7a73; }
  .num { text-align: right; font-variant-numeric: tabular-nums; }
  .state { padding: 2px 10px; border-radius: 99px; font-size: 12px; font-weight: 700; }
  .state.up { background: #d9efe7; color: #0f766e; }
  .state.down { background: #fde5e5; color: #b42318; }
  .cols { display: grid; grid-template-columns: 1fr 1fr; gap: 20px; }
  @media (max-width: 640px) { .cols { grid-template-columns: 1fr; } }
  .toolbar { display: flex; align-items: center; gap: 14px; font-size: 13px; color: #5c7a73; }
  button { font: inherit; padding: 7px 16px; border-radius: 8px; border: 1px solid #cfdedb; background: #fff; color: #143c35; cursor: pointer; }
  button:hover { background: #eef5f3; }
  #errbox { display: none; }
  .errrow { border-top: 1px solid #eef3f1; padding: 8px 0; font-family: ui-monospace, monospace; font-size: 12px; }
  .errrow .when { color: #5c7a73; margin-right: 10px; }
  .errrow .code { color: #b42318; font-weight: 700; margin-left: 10px; }
</style>
</head>
<body>
<div class="wrap">
  <h1>Chit Fund API<small id="stamp"></small></h1>
  <div id="banner" class="banner ` + health.Status + `">` + headline + `</div>

  <div class="cols">
    <div class="panel">
      <h2>Traffic</h2>
      <table>
        <tr><td>Total requests</td><td id="t-total" class="num">` + fmt.Sprint(health.Traffic.TotalRequests) + `</td></tr>
        <tr><td>Succeeded</td><td id="t-ok" class="num">` + fmt.Sprint(health.Traffic.SuccessCount) + `</td></tr>
        <tr><td>Failed</td><td id="t-fail" class="num">` + fmt.Sprint(health.Traffic.FailedCount) + `</td></tr>
        <tr><td>Success rate</td><td id="t-rate" class="num">` + health.Traffic.SuccessRate + `%</td></tr>
        <tr><td>Avg latency</td><td id="t-avg" class="num">` + fmt.Sprint(health.Traffic.AvgResponseTime) + ` ms</td></tr>
      </table>
    </div>
    <div class="panel">
      <h2>Runtime</h2>
      <table>
        <tr><td>Uptime</td><td id="r-up" class="num">--</td></tr>
        <tr><td>Heap in use</td><td id="r-heap" class="num">` + fmt.Sprint(health.Runtime.Memory.HeapUsed) + ` MB</td></tr>
        <tr><td>Allocated</td><td class="num">` + fmt.Sprint(health.Runtime.Memory.RSS) + ` MB</td></tr>
        <tr><td>Platform</td><td class="num">` + health.Runtime.Platform + `</td></tr>
        <tr><td>Go</td><td class="num">` + health.Runtime.GoVersion + `</td></tr>
      </table>
    </div>
  </div>

  <div class="panel">
    <h2>Dependencies</h2>
    <table>` + depRows + `</table>
  </div>

  <div class="panel">
    <div class="toolbar">
      <button onclick="toggleErrors()">Recent errors</button>
      <span id="poll-note">Refreshing · <span id="left">3</span> left</span>
      <button id="again" style="display:none" onclick="poll(true)">Refresh now</button>
    </div>
    <div id="errbox"></div>
  </div>
</div>
<script>
var left = 3;
function dur(s) {
  var h = Math.floor(s / 3600), m = Math.floor((s % 3600) / 60), sec = Math.floor(s % 60);
  return h + 'h ' + m + 'm ' + sec + 's';
}
function apply(d) {
  document.getElementById('stamp').textContent = 'as of ' + new Date().toLocaleTimeString();
  document.getElementById('t-total').textContent = d.traffic.totalRequests;
  document.getElementById('t-ok').textContent = d.traffic.successCount;
  document.getElementById('t-fail').textContent = d.traffic.failedCount;
  document.getElementById('t-rate').textContent = d.traffic.successRate + '%';
  document.getElementById('t-avg').textContent = d.traffic.avgResponseTime + ' ms';
  document.getElementById('r-up').textContent = dur(d.runtime.uptimeSeconds);
  document.getElementById('r-heap').textContent = d.runtime.memory.heapUsed + ' MB';
  ['database', 'redis', 'frontend'].forEach(function (k) {
    var dep = d.dependencies[k];
    var el = document.getElementById('dep-' + k);
    var good = dep.status === 'connected' || dep.status === 'reachable';
    el.textContent = dep.status;
    el.className = 'state ' + (good ? 'up' : 'down');
    document.getElementById('ping-' + k).textContent = dep.pingMs != null ? dep.pingMs + ' ms' : '--';
  });
  var banner = document.getElementById('banner');
  banner.className = 'banner ' + d.status;
  banner.textContent = d.status === 'ok' ? 'All systems operational' : 'Service degraded';
}
function poll(manual) {
  if (!manual && left <= 0) return;
  fetch('/health/json').then(function (r) { return r.json(); }).then(function (d) {
    apply(d);
    if (!manual) {
      left--;
      document.getElementById('left').textContent = left;
      if (left <= 0) {
        document.getElementById('poll-note').textContent = 'Refreshing paused';
        document.getElementById('again').style.display = '';
      }
    }
  }).catch(function () {});
}
function toggleErrors() {
  var box = document.getElementById('errbox');
  if (box.style.display === 'block') { box.style.display = 'none'; return; }
  box.style.display = 'block';
  box.textContent = 'Loading...';
  fetch('/health/errors').then(function (r) { return r.json(); }).then(function (errs) {
    if (!errs.length) { box.textContent = 'No server errors recorded.'; return; }
    box.innerHTML = errs.map(function (e) {
      return '<div class="errrow"><span class="when">' + new Date(e.time).toLocaleString() + '</span>' +
        (e.method || '') + ' ' + (e.path || '') + '<span class="code">' + (e.status || '') + '</span></div>';
    }).join('');
  }).catch(function () { box.textContent = 'Could not load errors.'; });
}
apply(JSON.parse(` + "`" + embedded + "`" + `));
setInterval(function () { poll(); }, 10000);
</script>
</body>
</html>`
}
