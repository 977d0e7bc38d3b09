package status

import (
	"encoding/json"
	"fmt"
	"strings"
)

// renderDashboard returns the HTML status page with the collected data
// embedded so the first paint needs no fetch.
func renderDashboard(health CollectResult) string {
	payload := map[string]interface{}{
		"status":       health.Status,
		"runtime":      health.Runtime,
		"traffic":      health.Traffic,
		"dependencies": health.Dependencies,
	}
	b, _ := json.Marshal(payload)
	jsonStr := string(b)
	// Escape for embedding in a JS template literal.
	jsonStr = strings.ReplaceAll(jsonStr, "\\", "\\\\")
	jsonStr = strings.ReplaceAll(jsonStr, "`", "\\`")
	jsonStr = strings.ReplaceAll(jsonStr, "$", "\\$")

	avgTime := fmt.Sprint(health.Traffic.AvgResponseTime)
	lastReqMethod := "-"
	lastReqPath := "-"
	lastReqIP := "-"
	if m, ok := health.Traffic.LastRequest.(map[string]interface{}); ok {
		if v, ok := m["method"].(string); ok {
			lastReqMethod = v
		}
		if v, ok := m["path"].(string); ok {
			lastReqPath = v
		}
		if v, ok := m["ip"].(string); ok {
			lastReqIP = v
		}
	}

	return `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>CattleTrack · API Status</title>
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <style>
    :root { --green: #166534; --dark: #14532d; --bg: #f7faf7; --muted: #64748b; }
    * { box-sizing: border-box; }
    body { background: var(--bg); color: var(--dark); font-family: 'Segoe UI', system-ui, sans-serif; margin: 0; min-height: 100vh; display: flex; align-items: center; justify-content: center; }
    .container { width: 100%; max-width: 1000px; padding: 40px 20px; display: flex; flex-direction: column; align-items: center; }
    header { width: 100%; display: flex; justify-content: space-between; align-items: center; margin-bottom: 25px; }
    .brand { font-size: 22px; font-weight: 800; color: var(--green); }
    .time-badge { font-size: 13px; font-weight: 700; background: #fff; padding: 8px 18px; border-radius: 99px; border: 1px solid rgba(0,0,0,0.06); }
    .headline { font-size: clamp(28px, 5vw, 48px); font-weight: 800; text-align: center; margin: 0; color: var(--green); }
    .subtext { font-size: 15px; font-weight: 600; color: var(--muted); margin: 12px 0 30px; }
    .card { width: 100%; background: #fff; border-radius: 20px; border: 1px solid rgba(0,0,0,0.06); box-shadow: 0 20px 60px -30px rgba(22, 101, 52, 0.25); overflow: hidden; }
    .grid { display: grid; grid-template-columns: repeat(3, 1fr); }
    .col { padding: 35px; border-right: 1px solid rgba(0,0,0,0.05); }
    .col:last-child { border-right: none; }
    .label { text-transform: uppercase; font-size: 11px; font-weight: 800; letter-spacing: 2px; color: #94a3b8; margin-bottom: 20px; }
    .big { font-size: clamp(24px, 3vw, 38px); font-weight: 800; margin-bottom: 10px; }
    .row { display: flex; justify-content: space-between; align-items: center; padding: 8px 0; border-bottom: 1px solid rgba(0,0,0,0.04); font-size: 14px; font-weight: 600; }
    .row:last-child { border-bottom: none; }
    .pill { padding: 4px 12px; border-radius: 10px; font-size: 11px; font-weight: 800; }
    .ok { background: rgba(22, 101, 52, 0.08); color: var(--green); }
    .err { background: rgba(239, 68, 68, 0.08); color: #ef4444; }
    .footer-req { background: rgba(20, 83, 45, 0.03); padding: 16px 35px; display: flex; justify-content: space-between; font-family: monospace; font-size: 13px; border-top: 1px solid rgba(0,0,0,0.05); }
    .footer-msg { margin-top: 25px; display: flex; align-items: center; gap: 15px; font-weight: 700; color: var(--muted); font-size: 13px; }
    .btn { background: transparent; color: var(--muted); border: 1px solid rgba(0,0,0,0.1); padding: 8px 18px; border-radius: 10px; cursor: pointer; font-weight: 800; font-size: 12px; }
    .btn:hover { color: var(--dark); }
    #error-modal { display: none; position: fixed; inset: 0; background: rgba(20, 83, 45, 0.35); z-index: 100; align-items: center; justify-content: center; padding: 20px; }
    .modal-content { background: #fff; width: 100%; max-width: 650px; border-radius: 18px; padding: 35px; max-height: 80vh; overflow-y: auto; }
    .error-item { border-bottom: 1px solid #f1f5f9; padding: 14px 0; font-size: 13px; }
    .err-meta { display: flex; gap: 10px; font-weight: 800; color: var(--green); margin-bottom: 5px; font-size: 10px; text-transform: uppercase; }
    .err-msg { font-weight: 700; color: #e11d48; }
    @media (max-width: 800px) { .grid { grid-template-columns: 1fr; } .col { border-right: none; border-bottom: 1px solid rgba(0,0,0,0.05); } .footer-req { flex-direction: column; gap: 8px; } }
  </style>
</head>
<body>
  <div id="error-modal" onclick="closeErrors(event)">
    <div class="modal-content" onclick="event.stopPropagation()">
      <div style="display:flex; justify-content:space-between; align-items:center; margin-bottom:25px;">
        <h2 style="margin:0; font-weight:800;">Internal Server Errors (Last 50)</h2>
        <button onclick="closeErrors()" style="border:none; background:none; cursor:pointer; font-weight:800; color:var(--muted)">CLOSE</button>
      </div>
      <div id="error-list">Loading...</div>
    </div>
  </div>
  <div class="container">
    <header>
      <div class="brand">CattleTrack API</div>
      <div class="time-badge"><span id="time-display"></span></div>
    </header>
    <h1 class="headline" id="headline">All Systems Operational</h1>
    <p class="subtext">Live monitoring of API traffic and dependencies.</p>
    <div class="card">
      <div class="grid">
        <div class="col">
          <div class="label">Traffic</div>
          <div class="big" id="total-req">` + fmt.Sprint(health.Traffic.TotalRequests) + `</div>
          <div class="row"><span>Successful</span><span id="success-count" style="color:var(--green)">` + fmt.Sprint(health.Traffic.SuccessCount) + `</span></div>
          <div class="row"><span>Failed</span><span id="failed-count" style="color:#ef4444">` + fmt.Sprint(health.Traffic.FailedCount) + `</span></div>
          <div class="row"><span>Success Rate</span><span id="success-rate">` + health.Traffic.SuccessRate + `%</span></div>
          <div class="row"><span>Avg Latency</span><span id="avg-time">` + avgTime + `ms</span></div>
        </div>
        <div class="col">
          <div class="label">Resources</div>
          <div class="big" id="uptime">--h --m --s</div>
          <div class="row"><span>Heap Used</span><span id="mem-heap">` + fmt.Sprint(health.Runtime.Memory.HeapUsed) + ` MB</span></div>
          <div class="row"><span>Memory</span><span>` + fmt.Sprint(health.Runtime.Memory.RSS) + ` MB</span></div>
          <div class="row"><span>Platform</span><span style="font-size:11px">` + health.Runtime.Platform + `</span></div>
          <div class="row"><span>Go</span><span style="font-size:11px">` + health.Runtime.GoVersion + `</span></div>
        </div>
        <div class="col">
          <div class="label">Connectivity</div>
          <div class="row"><span>Database</span><span id="pill-database" class="pill ok"><span id="ping-database">-- ms</span></span></div>
          <div class="row"><span>Redis Cache</span><span id="pill-redis" class="pill ok"><span id="ping-redis">-- ms</span></span></div>
          <div class="row"><span>Mail Service</span><span id="pill-mailer" class="pill ok"><span id="ping-mailer">-- ms</span></span></div>
        </div>
      </div>
      <div class="footer-req">
        <div><span style="opacity:0.5; margin-right:10px;">LAST INBOUND</span> <span id="req-method" style="font-weight:800">` + lastReqMethod + `</span></div>
        <div id="req-path">` + lastReqPath + `</div>
        <div id="req-ip" style="opacity:0.6">` + lastReqIP + `</div>
      </div>
    </div>
    <div class="footer-msg">
      <button class="btn" onclick="showErrors()">View Error Log</button>
      <span>Refreshes every 15 seconds.</span>
    </div>
  </div>
  <script>
    const fmt = (s) => { const d = Math.floor(s / 86400); const h = Math.floor((s % 86400) / 3600); const m = Math.floor((s % 3600) / 60); const sec = Math.floor(s % 60); return d > 0 ? d + 'd ' + h + 'h ' + m + 'm' : h + 'h ' + m + 'm ' + sec + 's'; };
    const updateUI = (d) => {
      document.getElementById('time-display').innerText = new Date().toLocaleTimeString();
      document.getElementById('total-req').innerText = d.traffic.totalRequests;
      document.getElementById('success-count').innerText = d.traffic.successCount;
      document.getElementById('failed-count').innerText = d.traffic.failedCount;
      document.getElementById('success-rate').innerText = d.traffic.successRate + '%';
      document.getElementById('avg-time').innerText = d.traffic.avgResponseTime + 'ms';
      document.getElementById('uptime').innerText = fmt(d.runtime.uptimeSeconds);
      document.getElementById('mem-heap').innerText = d.runtime.memory.heapUsed + ' MB';
      if (d.traffic.lastRequest) { document.getElementById('req-method').innerText = d.traffic.lastRequest.method; document.getElementById('req-path').innerText = d.traffic.lastRequest.path; document.getElementById('req-ip').innerText = d.traffic.lastRequest.ip; }
      const setP = (id, dep) => { const ok = dep.status === 'connected' || dep.status === 'reachable'; document.getElementById('pill-' + id).className = 'pill ' + (ok ? 'ok' : 'err'); document.getElementById('ping-' + id).innerText = (dep.pingMs != null ? dep.pingMs : '?') + ' ms'; };
      setP('database', d.dependencies.database);
      setP('redis', d.dependencies.redis);
      setP('mailer', d.dependencies.mailer);
      const hl = document.getElementById('headline');
      if (d.status === 'ok') { hl.innerText = 'All Systems Operational'; hl.style.color = ''; }
      else { hl.innerText = 'System Issues Detected'; hl.style.color = '#ef4444'; }
    };
    async function tick() { try { const r = await fetch('/health/json'); updateUI(await r.json()); } catch (e) {} }
    async function showErrors() {
      const modal = document.getElementById('error-modal'); const list = document.getElementById('error-list');
      modal.style.display = 'flex'; list.innerHTML = 'Fetching logs...';
      try {
        const r = await fetch('/health/errors'); const errors = await r.json();
        if (errors.length === 0) { list.innerHTML = '<div style="text-align:center; padding:40px; color:var(--muted); font-weight:700;">No internal errors recorded.</div>'; return; }
        list.innerHTML = errors.map(e => '<div class="error-item"><div class="err-meta"><span>' + new Date(e.time).toLocaleString() + '</span> <span>' + (e.method || '') + ' ' + (e.path || '') + '</span></div><div class="err-msg">' + (e.message || '') + '</div></div>').join('');
      } catch (e) { list.innerHTML = 'Error loading logs.'; }
    }
    function closeErrors() { document.getElementById('error-modal').style.display = 'none'; }
    setTimeout(() => { updateUI(JSON.parse(` + "`" + jsonStr + "`" + `)); }, 100);
    setInterval(tick, 15000);
  </script>
</body>
</html>`
}
