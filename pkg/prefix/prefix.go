// Package prefix detects the name a Python document uses for a module,
// e.g. "plt" in `import matplotlib.pyplot as plt`.
package prefix

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/charmbracelet/log"

	"github.com/bastiangx/kwserve/pkg/extract"
)

// DefaultModule is the module whose alias is looked for by default.
const DefaultModule = "matplotlib.pyplot"

// Detect returns the name that calls into module go through in src.
//
//	import matplotlib.pyplot as plt          -> "plt"
//	from matplotlib import pyplot as mp      -> "mp"
//	from matplotlib import pyplot            -> "pyplot"
//	import matplotlib.pyplot                 -> "matplotlib.pyplot"
//
// Only top-level imports are considered; the first match wins.
func Detect(src []byte, module string) (string, bool) {
	if module == "" {
		module = DefaultModule
	}

	p := sitter.NewParser()
	defer p.Close()
	p.SetLanguage(python.GetLanguage())

	tree, err := p.ParseCtx(context.Background(), nil, src)
	if err != nil {
		log.Debugf("prefix detection parse failed: %v", err)
		return "", false
	}
	defer tree.Close()

	d := &detector{src: src, module: module}
	root := tree.RootNode()
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		var name string
		switch child.Type() {
		case "import_statement":
			name = d.fromImport(child)
		case "import_from_statement":
			name = d.fromFromImport(child)
		}
		if name != "" {
			return name, true
		}
	}
	return "", false
}

// DetectLines is Detect over already split lines.
func DetectLines(lines []string, module string) (string, bool) {
	return Detect([]byte(strings.Join(lines, "\n")), module)
}

type detector struct {
	src    []byte
	module string
}

func (d *detector) text(n *sitter.Node) string {
	return n.Content(d.src)
}

// fromImport handles `import a.b`, `import a.b as c`.
func (d *detector) fromImport(node *sitter.Node) string {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "dotted_name":
			if d.text(child) == d.module {
				return d.module
			}
		case "aliased_import":
			name := child.ChildByFieldName("name")
			alias := child.ChildByFieldName("alias")
			if name != nil && alias != nil && d.text(name) == d.module {
				return d.text(alias)
			}
		}
	}
	return ""
}

// fromFromImport handles `from a import b`, `from a import b as c`.
func (d *detector) fromFromImport(node *sitter.Node) string {
	moduleNode := node.ChildByFieldName("module_name")
	if moduleNode == nil {
		return ""
	}
	parent := d.text(moduleNode)

	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.StartByte() == moduleNode.StartByte() {
			continue
		}
		switch child.Type() {
		case "dotted_name":
			if parent+"."+d.text(child) == d.module {
				return d.text(child)
			}
		case "aliased_import":
			name := child.ChildByFieldName("name")
			alias := child.ChildByFieldName("alias")
			if name != nil && alias != nil && parent+"."+d.text(name) == d.module {
				return d.text(alias)
			}
		}
	}
	return ""
}

// Resolve picks the prefix for a document: the detected alias when
// detection is on and succeeds, else configured, else the default.
func Resolve(lines []string, configured string, detect bool, module string) string {
	if detect {
		if name, ok := DetectLines(lines, module); ok {
			log.Debugf("Detected prefix %q for %s", name, module)
			return name
		}
	}
	if configured != "" {
		return configured
	}
	return extract.DefaultPrefix
}
