package server

import (
	"embed"
	"html/template"
	"io/fs"

	"github.com/pkg/errors"
)

//go:embed templates/*
var templateFiles embed.FS

const (
	pageSignIn     = "sign_in.html"
	pageParentHome = "parent_home.html"
)

func TemplateFilesFS() fs.FS {
	subFS, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		panic("Failed to create templates sub filesystem: " + err.Error())
	}
	return subFS
}

// ParseTemplate parses a template from the embedded filesystem
func ParseTemplate(name string) (*template.Template, error) {
	content, err := fs.ReadFile(TemplateFilesFS(), name)
	if err != nil {
		return nil, err
	}
	return template.New(name).Parse(string(content))
}

type pageSet map[string]*template.Template

func parsePages() (pageSet, error) {
	pages := pageSet{}
	for _, name := range []string{pageSignIn, pageParentHome} {
		tmpl, err := ParseTemplate(name)
		if err != nil {
			return nil, errors.Wrapf(err, "[parsePages] %s", name)
		}
		pages[name] = tmpl
	}
	return pages, nil
}
