// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package render produces the printable election documents.

Templates are embedded from templates/*.html and executed with html/template:

	tmpl := render.MustNew()
	html, err := tmpl.Render(render.Ballot, render.BallotPage{...})

Documents: Ballot, Timeline, Election (final ranking), Minutes (ordinary or
extraordinary meeting) and Registration (candidate form).

Logos are only embedded when they are data:image URLs, and the theme color
must be a hex value.

# PDF

ChromeRenderer prints the HTML with headless Chromium through chromedp:

	pdf, err := render.NewChromeRenderer(30*time.Second).PDF(ctx, html)

The server only installs it when PDF_ENABLED is set.
*/
package render
