package app

import (
	"fmt"
	"io"
	"time"

	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"

	"ffg-go/internal/ffg"
	"ffg-go/internal/model"
)

// ExportNode is one record of a nested, human-oriented tree listing.
// Content is left out; use a snapshot for a faithful copy.
type ExportNode struct {
	ID          string        `json:"id" yaml:"id"`
	Name        string        `json:"name" yaml:"name"`
	Type        model.Kind    `json:"type" yaml:"type"`
	Size        int64         `json:"size" yaml:"size"`
	Modified    time.Time     `json:"modified" yaml:"modified"`
	Permissions string        `json:"permissions,omitempty" yaml:"permissions,omitempty"`
	Owner       string        `json:"owner,omitempty" yaml:"owner,omitempty"`
	Encrypted   bool          `json:"encrypted,omitempty" yaml:"encrypted,omitempty"`
	Children    []*ExportNode `json:"children,omitempty" yaml:"children,omitempty"`
}

// BuildExport nests the subtree rooted at id. Records reachable twice through
// a malformed parent chain are listed once.
func BuildExport(tree *ffg.Tree, id string) (*ExportNode, error) {
	rec, ok := tree.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ffg.ErrNotFound, id)
	}

	root := exportNode(rec)
	seen := map[string]bool{id: true}
	queue := []*ExportNode{root}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, child := range tree.ChildrenOf(n.ID) {
			if seen[child.ID] {
				continue
			}
			seen[child.ID] = true
			c := exportNode(child)
			n.Children = append(n.Children, c)
			queue = append(queue, c)
		}
	}
	return root, nil
}

func exportNode(r *model.FileRecord) *ExportNode {
	return &ExportNode{
		ID:          r.ID,
		Name:        r.Name,
		Type:        r.Kind,
		Size:        r.Size,
		Modified:    r.ModifiedAt.UTC(),
		Permissions: r.Permissions,
		Owner:       r.Owner,
		Encrypted:   r.IsEncrypted,
	}
}

// WriteExport encodes node as "json" or "yaml".
func WriteExport(w io.Writer, node *ExportNode, format string) error {
	var (
		data []byte
		err  error
	)
	switch format {
	case "json":
		data, err = sonic.ConfigStd.MarshalIndent(node, "", "  ")
		if err == nil {
			data = append(data, '\n')
		}
	case "yaml":
		data, err = yaml.Marshal(node)
	default:
		return fmt.Errorf("unknown export format %q (want json or yaml)", format)
	}
	if err != nil {
		return fmt.Errorf("encoding %s export: %w", format, err)
	}
	_, err = w.Write(data)
	return err
}
