package assembler

import "html/template"

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="{{.Lang}}">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<meta name="description" content="{{.Description}}">
{{- if .Keywords}}
<meta name="keywords" content="{{.Keywords}}">
{{- end}}
{{- if .Canonical}}
<link rel="canonical" href="{{.Canonical}}">
{{- end}}
{{- range .OpenGraph}}
<meta property="{{.Name}}" content="{{.Content}}">
{{- end}}
{{- range .Twitter}}
<meta name="{{.Name}}" content="{{.Content}}">
{{- end}}
<link rel="stylesheet" href="styles.css">
{{- if .JSONLD}}
<script type="application/ld+json">{{.JSONLD}}</script>
{{- end}}
</head>
<body>
<a class="skip-link" href="#main">Skip to content</a>
<header class="site-header">
<a class="brand" href="{{.Home}}">{{.Business}}</a>
<nav class="site-nav" aria-label="Main">
<ul>
{{- range .Nav}}
<li><a href="{{.Href}}"{{if .Current}} aria-current="page"{{end}}>{{.Label}}</a></li>
{{- end}}
</ul>
</nav>
</header>
<main id="main">
{{- range .Sections}}
<section id="{{.ID}}" class="section section-{{.Type}}{{if .Variant}} variant-{{.Variant}}{{end}}{{if .Layouts}} {{.Layouts}}{{end}}">
{{- if .First}}
<h1>{{.Copy.Headline}}</h1>
{{- else if .Copy.Headline}}
<h2>{{.Copy.Headline}}</h2>
{{- end}}
{{- if .Copy.Subheadline}}
<p class="subheadline">{{.Copy.Subheadline}}</p>
{{- end}}
{{- if .Copy.Description}}
<p>{{.Copy.Description}}</p>
{{- end}}
{{- range .Images}}
<img src="{{.Src}}" alt="{{.Alt}}" width="{{.Width}}" height="{{.Height}}" loading="lazy">
{{- end}}
{{- if .Copy.Bullets}}
<ul>
{{- range .Copy.Bullets}}
<li>{{.}}</li>
{{- end}}
</ul>
{{- end}}
{{- if .Children}}
<ul class="child-pages">
{{- range .Children}}
<li><a href="{{.Href}}">{{.Label}}</a></li>
{{- end}}
</ul>
{{- end}}
{{- if eq .Type "contact-form"}}
<form class="contact-form" method="post" action="#">
<label for="{{.ID}}-name">Name</label>
<input id="{{.ID}}-name" name="name" type="text" autocomplete="name" required>
<label for="{{.ID}}-email">Email</label>
<input id="{{.ID}}-email" name="email" type="email" autocomplete="email" required>
<label for="{{.ID}}-message">Message</label>
<textarea id="{{.ID}}-message" name="message" rows="5" required></textarea>
<button type="submit">Send</button>
</form>
{{- end}}
{{- with .Copy.CTA}}
<a class="button" href="{{.Href}}">{{.Label}}</a>
{{- end}}
</section>
{{- end}}
</main>
<footer class="site-footer">
<nav aria-label="Footer">
<ul>
{{- range .Footer}}
<li><a href="{{.Href}}">{{.Label}}</a></li>
{{- end}}
</ul>
</nav>
<p>
{{- if .Email}}<a href="mailto:{{.Email}}">{{.Email}}</a>{{end}}
{{- if .Phone}} <a href="tel:{{.Phone}}">{{.Phone}}</a>{{end}}
</p>
<p>&copy; {{.Year}} {{.Business}}</p>
</footer>
<script src="script.js" defer></script>
</body>
</html>
`))

const baseCSS = `*, *::before, *::after { box-sizing: border-box; }
body { margin: 0; font-family: var(--font-body); color: var(--color-text); background: var(--color-background); line-height: 1.6; }
h1, h2, h3 { font-family: var(--font-heading); line-height: 1.2; }
h1 { font-size: var(--text-4xl); }
h2 { font-size: var(--text-2xl); }
a { color: var(--color-primary); }
img { max-width: 100%; height: auto; border-radius: var(--radius-md); }
.skip-link { position: absolute; left: -999px; }
.skip-link:focus { left: var(--space-4); top: var(--space-4); }
.site-header { display: flex; justify-content: space-between; align-items: center; padding: var(--space-4) var(--space-8); box-shadow: var(--shadow-sm); }
.site-nav ul, .site-footer ul { display: flex; gap: var(--space-4); list-style: none; margin: 0; padding: 0; }
.site-nav a[aria-current="page"] { font-weight: 700; }
.section { padding: var(--space-16) var(--space-8); }
.section-hero { background: var(--color-surface); }
.button { display: inline-block; padding: var(--space-3) var(--space-6); background: var(--color-primary); color: var(--color-on-primary); border-radius: var(--radius-md); text-decoration: none; transition: var(--transition-base); }
.contact-form { display: grid; gap: var(--space-3); max-width: 32rem; }
.site-footer { padding: var(--space-8); border-top: 1px solid var(--color-border); }
@media (max-width: 639px) { .hide-mobile { display: none; } .mobile-stack > * { display: block; } }
@media (min-width: 640px) and (max-width: 1023px) { .hide-tablet { display: none; } .tablet-grid-2 { display: grid; grid-template-columns: repeat(2, 1fr); } }
@media (min-width: 1024px) { .hide-desktop { display: none; } .desktop-grid-3 { display: grid; grid-template-columns: repeat(3, 1fr); } .desktop-split { display: grid; grid-template-columns: 1fr 1fr; } }
`

const script = `document.addEventListener("DOMContentLoaded", function () {
  var form = document.querySelector(".contact-form");
  if (!form) return;
  form.addEventListener("submit", function (e) {
    e.preventDefault();
    form.insertAdjacentHTML("beforeend", "<p role=\"status\">Thanks, we will be in touch.</p>");
    form.reset();
  });
});
`
