package services

import (
	"html/template"
	"strings"
)

type invitationDetail struct {
	Label string
	Value string
}

// invitationPage is the data behind the HTML invitation. Every field is escaped by the template.
type invitationPage struct {
	Subject    string
	AppName    string
	LogoURLs   []string
	Paragraphs []string
	Details    []invitationDetail
	LoginURL   string
	Footer     []string
}

var invitationTemplate = template.Must(template.New("invitation").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Subject}}</title>
</head>
<body style="margin:0;padding:0;background-color:#f3f4f6;font-family:Arial,Helvetica,sans-serif;">
<div style="max-width:600px;margin:0 auto;padding:24px 16px;">
<div style="background-color:#ffffff;border-radius:10px;border:1px solid #e5e7eb;padding:28px;">
{{- if .LogoURLs}}
<div style="text-align:center;margin-bottom:16px;">
{{- range .LogoURLs}}
<img src="{{.}}" alt="{{$.AppName}}" style="height:56px;width:auto;margin:0 8px;" />
{{- end}}
</div>
{{- end}}
<h1 style="margin:0 0 20px 0;font-size:21px;color:#111827;text-align:center;">{{.Subject}}</h1>
{{- range .Paragraphs}}
<p style="margin:0 0 16px 0;color:#1f2937;font-size:15px;line-height:1.6;">{{.}}</p>
{{- end}}
{{- if .Details}}
<table role="presentation" cellpadding="0" cellspacing="0" width="100%" style="margin:8px 0 24px 0;border-collapse:collapse;background-color:#f9fafb;">
{{- range .Details}}
<tr>
<td style="padding:10px 14px;border-bottom:1px solid #e5e7eb;color:#6b7280;font-size:13px;width:40%;">{{.Label}}</td>
<td style="padding:10px 14px;border-bottom:1px solid #e5e7eb;color:#111827;font-size:15px;font-weight:bold;">{{.Value}}</td>
</tr>
{{- end}}
</table>
{{- end}}
{{- if .LoginURL}}
<div style="text-align:center;margin:0 0 24px 0;">
<a href="{{.LoginURL}}" style="display:inline-block;padding:12px 30px;background-color:#f97316;color:#ffffff;text-decoration:none;border-radius:6px;font-weight:bold;">Log in</a>
</div>
{{- end}}
<div style="color:#6b7280;font-size:13px;line-height:1.6;">
{{- range $i, $line := .Footer}}{{if $i}}<br />{{end}}{{$line}}{{end -}}
</div>
</div>
</div>
</body>
</html>`))

// renderInvitationHTML drops blank paragraphs and details before rendering.
func renderInvitationHTML(page invitationPage) (string, error) {
	paragraphs := page.Paragraphs[:0:0]
	for _, p := range page.Paragraphs {
		if p = strings.TrimSpace(p); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	page.Paragraphs = paragraphs

	details := page.Details[:0:0]
	for _, d := range page.Details {
		if strings.TrimSpace(d.Value) != "" {
			details = append(details, d)
		}
	}
	page.Details = details

	var b strings.Builder
	if err := invitationTemplate.Execute(&b, page); err != nil {
		return "", err
	}
	return b.String(), nil
}
