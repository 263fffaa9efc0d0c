package selection

import "github.com/transferai/agreement-proxy/assist"

// Snapshot is a point-in-time, self-consistent view of the whole graph.
// It is safe to serialize after the call returns.
type Snapshot struct {
	Selection        Selection            `json:"selection"`
	ReceivingOptions OptionsSnapshot      `json:"receivingOptions"`
	YearOptions      OptionsSnapshot      `json:"yearOptions"`
	Availability     AvailabilitySnapshot `json:"availability"`
	MajorOptions     OptionsSnapshot      `json:"majorOptions"`
	Agreements       AgreementsSnapshot   `json:"agreements"`
	Documents        DocumentsSnapshot    `json:"documents"`
}

// OptionsSnapshot is the view of a name-to-id option node
type OptionsSnapshot struct {
	NodeStatus
	Options  assist.NameIDMap `json:"options,omitempty"`
	Warnings []string         `json:"warnings,omitempty"`
}

// AvailabilitySnapshot is the view of the category availability gate
type AvailabilitySnapshot struct {
	NodeStatus
	Majors      bool `json:"majors"`
	Departments bool `json:"departments"`
}

// AgreementsSnapshot is the view of the fetched agreement set
type AgreementsSnapshot struct {
	NodeStatus
	Agreements []assist.Agreement `json:"agreements,omitempty"`
	Warnings   []string           `json:"warnings,omitempty"`
}

// DocumentsSnapshot is the view of the aggregated document images
type DocumentsSnapshot struct {
	NodeStatus
	ActiveIndex  int      `json:"activeIndex"`
	ActiveImages []string `json:"activeImages,omitempty"`
	AllImages    []string `json:"allImages,omitempty"`
}

// Snapshot returns a consistent copy of the graph under one lock acquisition
func (g *Graph) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	snap := Snapshot{
		Selection: Selection{
			Sending:     append([]assist.Institution(nil), g.sel.Sending...),
			ReceivingID: g.sel.ReceivingID,
			YearID:      g.sel.YearID,
			Category:    g.sel.Category,
			MajorKey:    g.sel.MajorKey,
			MajorName:   g.sel.MajorName,
		},
		ReceivingOptions: optionsSnapshot(g.receivingOptions),
		YearOptions:      optionsSnapshot(g.yearOptions),
		Availability: AvailabilitySnapshot{
			NodeStatus:  g.availability.NodeStatus,
			Majors:      g.availability.Majors,
			Departments: g.availability.Departments,
		},
		MajorOptions: optionsSnapshot(g.majorOptions),
		Agreements: AgreementsSnapshot{
			NodeStatus: g.agreementSet.NodeStatus,
			Agreements: append([]assist.Agreement(nil), g.agreementSet.Agreements...),
			Warnings:   append([]string(nil), g.agreementSet.Warnings...),
		},
		Documents: DocumentsSnapshot{
			NodeStatus:  g.documents.NodeStatus,
			ActiveIndex: g.documents.ActiveIndex,
		},
	}
	if g.documents.set != nil {
		snap.Documents.ActiveImages = g.documents.set.ImagesFor(g.documents.ActiveIndex)
		snap.Documents.AllImages = g.documents.set.Union()
	}
	return snap
}

func optionsSnapshot(node optionsNode) OptionsSnapshot {
	return OptionsSnapshot{
		NodeStatus: node.NodeStatus,
		Options:    copyOptions(node.Options),
		Warnings:   append([]string(nil), node.Warnings...),
	}
}

func copyOptions(m assist.NameIDMap) assist.NameIDMap {
	if m == nil {
		return nil
	}
	out := make(assist.NameIDMap, len(m))
	for name, id := range m {
		out[name] = id
	}
	return out
}
