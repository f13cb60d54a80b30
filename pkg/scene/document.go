package scene

import (
	"encoding/json"
	"os"
	"slices"

	errs "github.com/matzehuels/layerscape/pkg/errors"
)

// DocumentVersion is bumped whenever the document layout changes
// incompatibly.
const DocumentVersion = 1

// =============================================================================
// Document - serialized scene
// =============================================================================

// Document is the serialized form of a Scene. It is what the CLI writes,
// the HTTP API returns and the store persists; a renderer needs nothing
// else to draw the scene.
type Document struct {
	Version     int              `json:"version" bson:"version"`
	Name        string           `json:"name,omitempty" bson:"name,omitempty"`
	TotalDepth  float64          `json:"total_depth" bson:"total_depth"`
	PlacedDepth float64          `json:"placed_depth" bson:"placed_depth"`
	Compression float64          `json:"compression" bson:"compression"`
	Bounds      AABB             `json:"bounds" bson:"bounds"`
	Nodes       []NodeDocument   `json:"nodes" bson:"nodes"`
	Diagnostics []DiagnosticInfo `json:"diagnostics,omitempty" bson:"diagnostics,omitempty"`
}

// NodeDocument is one serialized VisualNode.
type NodeDocument struct {
	Index      int    `json:"index" bson:"index"`
	Kind       string `json:"kind" bson:"kind"`
	Name       string `json:"name,omitempty" bson:"name,omitempty"`
	Shape      string `json:"shape" bson:"shape"`
	Activation string `json:"activation,omitempty" bson:"activation,omitempty"`
	Params     int    `json:"parameters" bson:"parameters"`

	Category Category `json:"category" bson:"category"`
	Surface  Surface  `json:"surface,omitempty" bson:"surface,omitempty"`
	Terminal bool     `json:"terminal,omitempty" bson:"terminal,omitempty"`
	Phase    Phase    `json:"phase" bson:"phase"`

	Position    Vec3           `json:"position" bson:"position"`
	Scale       float64        `json:"scale" bson:"scale"`
	Bounds      AABB           `json:"bounds" bson:"bounds"`
	WorldBounds *AABB          `json:"world_bounds,omitempty" bson:"world_bounds,omitempty"`
	Cloud       *InstanceCloud `json:"cloud,omitempty" bson:"cloud,omitempty"`
	Primitives  []Primitive    `json:"primitives,omitempty" bson:"primitives,omitempty"`
	Children    []NodeDocument `json:"children,omitempty" bson:"children,omitempty"`
}

// DiagnosticInfo is a serialized per-layer diagnostic.
type DiagnosticInfo struct {
	Code    string `json:"code" bson:"code"`
	Message string `json:"message" bson:"message"`
}

// Export converts a scene into its document form.
func Export(s *Scene) Document {
	doc := Document{Version: DocumentVersion}
	if s == nil {
		return doc
	}
	doc.Name = s.Name
	doc.TotalDepth = s.TotalDepth
	doc.PlacedDepth = s.PlacedDepth
	doc.Compression = s.Compression
	doc.Bounds = s.Bounds()
	doc.Nodes = make([]NodeDocument, 0, len(s.Nodes))
	for _, n := range s.Nodes {
		doc.Nodes = append(doc.Nodes, exportNode(n))
	}
	for _, d := range s.Diagnostics {
		code := string(errs.GetCode(d))
		if code == "" {
			code = string(errs.ErrCodeInternal)
		}
		doc.Diagnostics = append(doc.Diagnostics, DiagnosticInfo{Code: code, Message: errs.UserMessage(d)})
	}
	return doc
}

func exportNode(n *VisualNode) NodeDocument {
	nd := NodeDocument{
		Index:      n.Layer.Index,
		Kind:       n.Layer.Kind,
		Name:       n.Layer.Name,
		Shape:      n.Layer.Shape.String(),
		Activation: n.Layer.ActivationName(),
		Params:     n.Layer.ParamCount,
		Category:   n.Category,
		Surface:    n.Surface,
		Terminal:   n.Terminal,
		Phase:      n.Interaction.Phase(),
		Position:   n.Position,
		Scale:      n.Scale,
		Bounds:     n.Bounds,
		Primitives: slices.Clone(n.Primitives),
	}
	if n.Cloud != nil {
		cloud := *n.Cloud
		nd.Cloud = &cloud
	}
	if wb, ok := n.WorldBounds(); ok {
		nd.WorldBounds = &wb
	}
	for _, c := range n.Children {
		nd.Children = append(nd.Children, exportNode(c))
	}
	return nd
}

// =============================================================================
// Document Serialization API
// =============================================================================

// MarshalDocument serializes a Document to pretty-printed JSON bytes.
func MarshalDocument(d Document) ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// UnmarshalDocument deserializes JSON bytes into a Document.
func UnmarshalDocument(data []byte) (Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return Document{}, errs.Wrap(errs.ErrCodeInvalidFormat, err, "unmarshal scene document")
	}
	if d.Version == 0 {
		d.Version = DocumentVersion
	}
	if d.Version > DocumentVersion {
		return Document{}, errs.New(errs.ErrCodeUnsupported, "scene document version %d is newer than %d", d.Version, DocumentVersion)
	}
	return d, nil
}

// WriteDocumentFile writes a Document to a JSON file.
func WriteDocumentFile(d Document, path string) error {
	data, err := MarshalDocument(d)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadDocumentFile reads a Document from a JSON file.
func ReadDocumentFile(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Document{}, errs.Wrap(errs.ErrCodeNotFound, err, "read %s", path)
		}
		return Document{}, errs.Wrap(errs.ErrCodeInternal, err, "read %s", path)
	}
	return UnmarshalDocument(data)
}
