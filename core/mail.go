package core

import (
	"bytes"
	"fmt"
	htmltmpl "html/template"
	"net/mail"
	"path"
	"strings"
	texttmpl "text/template"

	"github.com/pkg/errors"

	appfs "github.com/trezcool/maendeleo/fs"
)

var (
	textTemplates *texttmpl.Template
	htmlTemplates *htmltmpl.Template
)

type (
	EmailMessage struct {
		To      []mail.Address
		Subject string
		BodyStr string // simple text/plain, non-templated content

		// templated contents
		TemplateName string // without ext
		TemplateData interface{}
		TextContent  string
		HTMLContent  string
	}

	ContextData struct {
		AppName         string
		FrontendBaseURL string
		Data            interface{}
	}

	// EmailService is any service that can send emails.
	EmailService interface {
		// SendMessages sends messages concurrently
		SendMessages(messages ...*EmailMessage)
	}
)

// ParseEmailTemplates loads the embedded email templates. It must be called
// once at start up, before any EmailMessage is rendered.
func ParseEmailTemplates(logger Logger) {
	var err error
	if textTemplates, err = texttmpl.ParseFS(appfs.FS, path.Join("templates", "*.txt")); err != nil {
		logger.Fatal(fmt.Sprintf("parsing text email templates: %v", err), err)
	}
	if htmlTemplates, err = htmltmpl.ParseFS(appfs.FS, path.Join("templates", "*.html")); err != nil {
		logger.Fatal(fmt.Sprintf("parsing html email templates: %v", err), err)
	}
}

func (m *EmailMessage) getContextData(conf *Config) ContextData {
	return ContextData{
		AppName:         conf.AppName,
		FrontendBaseURL: conf.FrontendBaseURL,
		Data:            m.TemplateData,
	}
}

func (m *EmailMessage) renderText(conf *Config) error {
	if m.BodyStr != "" {
		m.TextContent = m.BodyStr
		return nil
	}
	if m.TemplateName == "" || textTemplates == nil {
		return nil
	}
	tmpl := textTemplates.Lookup(m.TemplateName + ".txt")
	if tmpl == nil {
		return nil
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, m.getContextData(conf)); err != nil {
		return errors.Wrapf(err, "executing template %s.txt", m.TemplateName)
	}
	m.TextContent = strings.TrimSpace(buf.String())
	return nil
}

func (m *EmailMessage) renderHTML(conf *Config) error {
	if m.TemplateName == "" || htmlTemplates == nil {
		return nil
	}
	tmpl := htmlTemplates.Lookup(m.TemplateName + ".html")
	if tmpl == nil {
		return nil
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, m.getContextData(conf)); err != nil {
		return errors.Wrapf(err, "executing template %s.html", m.TemplateName)
	}
	m.HTMLContent = buf.String()
	return nil
}

// Render materializes the message's text and HTML contents from its template.
func (m *EmailMessage) Render(conf *Config) error {
	if err := m.renderText(conf); err != nil {
		return err
	}
	return m.renderHTML(conf)
}

func (m *EmailMessage) HasRecipients() bool {
	return len(m.To) > 0
}

func (m *EmailMessage) HasContent() bool {
	return m.TextContent != "" || m.HTMLContent != ""
}
