// Package assembler renders a planned, designed and synthesized site to a
// directory tree: one HTML file per page, a shared stylesheet and script,
// an images directory, and sitemap.xml plus robots.txt alongside them.
package assembler
