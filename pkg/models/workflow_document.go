package models

import (
	"fmt"
	"sort"
	"strings"
)

// WorkflowDocument is an n8n workflow in the importer's JSON shape.
// Field names are fixed by the n8n import format.
type WorkflowDocument struct {
	Meta        DocumentMeta               `json:"meta"`
	Nodes       []WorkflowNode             `json:"nodes"`
	Connections map[string]NodeConnections `json:"connections"`
}

// DocumentMeta identifies the n8n instance the document was produced for.
type DocumentMeta struct {
	InstanceID string `json:"instanceId"`
}

// WorkflowNode is a single n8n node.
type WorkflowNode struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	TypeVersion float64        `json:"typeVersion,omitempty"`
	Position    [2]float64     `json:"position"`
	Parameters  map[string]any `json:"parameters"`
}

// NodeConnections lists the outgoing edges of a node, grouped by output index.
type NodeConnections struct {
	Main [][]ConnectionTarget `json:"main"`
}

// ConnectionTarget is the destination end of an edge.
type ConnectionTarget struct {
	Node  string `json:"node"`
	Type  string `json:"type"`
	Index int    `json:"index"`
}

// Normalize replaces nil collections with empty ones so the document
// always serializes as {"nodes": [], "connections": {}}.
func (d *WorkflowDocument) Normalize() {
	if d.Nodes == nil {
		d.Nodes = []WorkflowNode{}
	}
	if d.Connections == nil {
		d.Connections = map[string]NodeConnections{}
	}
	for i := range d.Nodes {
		if d.Nodes[i].Parameters == nil {
			d.Nodes[i].Parameters = map[string]any{}
		}
	}
}

// NodeNames returns the set of node names in the document.
func (d *WorkflowDocument) NodeNames() map[string]bool {
	names := make(map[string]bool, len(d.Nodes))
	for _, n := range d.Nodes {
		names[n.Name] = true
	}
	return names
}

// Validate checks that every connection source and target refers to an existing node.
func (d *WorkflowDocument) Validate() error {
	names := d.NodeNames()
	var dangling []string
	for source, conns := range d.Connections {
		if !names[source] {
			dangling = append(dangling, source)
		}
		for _, output := range conns.Main {
			for _, target := range output {
				if !names[target.Node] {
					dangling = append(dangling, source+"->"+target.Node)
				}
			}
		}
	}
	if len(dangling) > 0 {
		sort.Strings(dangling)
		return fmt.Errorf("dangling connections: %s", strings.Join(dangling, ", "))
	}
	return nil
}
