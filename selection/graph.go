package selection

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/transferai/agreement-proxy/agreements"
	"github.com/transferai/agreement-proxy/assist"
	"github.com/transferai/agreement-proxy/events"
	"github.com/transferai/agreement-proxy/majors"
)

// InstitutionsProvider supplies the receiving institutions for a sending set
type InstitutionsProvider interface {
	ReceivingOptions(ctx context.Context, sendingIDs []string) (assist.NameIDMap, []string, error)
}

// YearsProvider supplies the common academic years for a pairing
type YearsProvider interface {
	YearOptions(ctx context.Context, sendingIDs []string, receivingID string) (assist.NameIDMap, []string, error)
}

// MajorsProvider supplies the category availability gate and major listings
type MajorsProvider interface {
	Check(ctx context.Context, sendingID, receivingID, yearID string) (majors.Availability, error)
	List(ctx context.Context, sendingID, receivingID, yearID string, category assist.Category) (assist.NameIDMap, error)
}

// AgreementsProvider supplies agreement sets and their rendered documents
type AgreementsProvider interface {
	FetchSet(ctx context.Context, sending []assist.Institution, receivingID, yearID, majorKey string) ([]assist.Agreement, []string, error)
	AggregateImages(ctx context.Context, set []assist.Agreement) *agreements.ImageSet
}

// Selection is the user's current position in the dependency chain
type Selection struct {
	Sending     []assist.Institution `json:"sending"`
	ReceivingID string               `json:"receivingId"`
	YearID      string               `json:"yearId"`
	Category    assist.Category      `json:"category"`
	MajorKey    string               `json:"majorKey"`
	MajorName   string               `json:"majorName"`
}

type optionsNode struct {
	NodeStatus
	Options  assist.NameIDMap
	Warnings []string
}

type availabilityNode struct {
	NodeStatus
	majors.Availability
}

type agreementsNode struct {
	NodeStatus
	Agreements []assist.Agreement
	Warnings   []string
}

type documentsNode struct {
	NodeStatus
	set         *agreements.ImageSet
	ActiveIndex int
}

// Graph owns the dependent-selection chain
// sending -> receiving -> year -> (availability, majors) -> agreements -> documents.
// Every mutation synchronously invalidates all downstream nodes before any
// background fetch is scheduled, so a reader never observes stale downstream
// data alongside a new upstream choice. Loads carry the generation at which
// they started; results arriving after a further mutation are discarded.
type Graph struct {
	institutions InstitutionsProvider
	years        YearsProvider
	majors       MajorsProvider
	agreements   AgreementsProvider
	updates      *events.SubscriptionManager

	mu     sync.Mutex
	gen    uint64
	ctx    context.Context
	cancel context.CancelFunc

	sel              Selection
	receivingOptions optionsNode
	yearOptions      optionsNode
	availability     availabilityNode
	majorOptions     optionsNode
	agreementSet     agreementsNode
	documents        documentsNode
}

// NewGraph creates the selection graph with all nodes idle
func NewGraph(institutions InstitutionsProvider, years YearsProvider, majorsProvider MajorsProvider, agreementsProvider AgreementsProvider) *Graph {
	return &Graph{
		institutions: institutions,
		years:        years,
		majors:       majorsProvider,
		agreements:   agreementsProvider,
		updates:      events.NewSubscriptionManager(),
		sel:          Selection{Category: assist.CategoryMajor},
		receivingOptions: optionsNode{NodeStatus: idle()},
		yearOptions:      optionsNode{NodeStatus: idle()},
		availability:     availabilityNode{NodeStatus: idle()},
		majorOptions:     optionsNode{NodeStatus: idle()},
		agreementSet:     agreementsNode{NodeStatus: idle()},
		documents:        documentsNode{NodeStatus: idle()},
	}
}

// Updates returns the manager for node change notifications
func (g *Graph) Updates() *events.SubscriptionManager {
	return g.updates
}

// Start implements core.Interface
func (g *Graph) Start(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ctx, g.cancel = context.WithCancel(ctx)
	return nil
}

// Stop implements core.Interface. In-flight loads observe the cancelled
// context and their results are discarded.
func (g *Graph) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cancel != nil {
		g.cancel()
	}
	g.gen++
}

func (g *Graph) runCtx() context.Context {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.ctx != nil {
		return g.ctx
	}
	return context.Background()
}

func (g *Graph) notify() {
	g.updates.Emit(g.runCtx())
}

// Downstream invalidation helpers. All run with g.mu held and reset state
// strictly deeper than the mutated node.

func (g *Graph) clearDocuments() {
	g.documents = documentsNode{NodeStatus: idle()}
}

func (g *Graph) clearAgreements() {
	g.agreementSet = agreementsNode{NodeStatus: idle()}
	g.clearDocuments()
}

func (g *Graph) clearMajors() {
	g.sel.MajorKey = ""
	g.sel.MajorName = ""
	g.availability = availabilityNode{NodeStatus: idle()}
	g.majorOptions = optionsNode{NodeStatus: idle()}
	g.clearAgreements()
}

func (g *Graph) clearYears() {
	g.sel.YearID = ""
	g.yearOptions = optionsNode{NodeStatus: idle()}
	g.clearMajors()
}

func (g *Graph) clearReceiving() {
	g.sel.ReceivingID = ""
	g.receivingOptions = optionsNode{NodeStatus: idle()}
	g.clearYears()
}

func (g *Graph) sendingIDsLocked() []string {
	ids := make([]string, len(g.sel.Sending))
	for i, inst := range g.sel.Sending {
		ids[i] = inst.ID
	}
	return ids
}

// SetSending replaces the sending-institution selection. All downstream
// choices and data are invalidated; the receiving options reload for a
// non-empty selection.
func (g *Graph) SetSending(sending []assist.Institution) error {
	for _, inst := range sending {
		if inst.ID == "" {
			return fmt.Errorf("sending institution %q has no id", inst.Name)
		}
	}

	g.mu.Lock()
	if sameInstitutions(g.sel.Sending, sending) {
		g.mu.Unlock()
		return nil
	}

	g.sel.Sending = append([]assist.Institution(nil), sending...)
	g.clearReceiving()
	g.gen++
	if len(g.sel.Sending) > 0 {
		g.receivingOptions.NodeStatus = loading()
		go g.loadReceivingOptions(g.gen, g.sendingIDsLocked())
	}
	g.mu.Unlock()

	g.notify()
	return nil
}

func (g *Graph) loadReceivingOptions(gen uint64, sendingIDs []string) {
	options, warnings, err := g.institutions.ReceivingOptions(g.runCtx(), sendingIDs)

	g.mu.Lock()
	if gen != g.gen {
		// Selection moved on while this load was in flight
		g.mu.Unlock()
		return
	}
	switch {
	case err != nil:
		g.receivingOptions = optionsNode{NodeStatus: failed(err.Error())}
	case len(options) == 0:
		g.receivingOptions = optionsNode{
			NodeStatus: failed("no receiving institutions have agreements with every selected institution"),
			Warnings:   warnings,
		}
	default:
		g.receivingOptions = optionsNode{NodeStatus: ready(), Options: options, Warnings: warnings}
	}
	g.mu.Unlock()

	g.notify()
}

// SetReceiving picks a receiving institution from the loaded options and
// starts the academic-year load
func (g *Graph) SetReceiving(receivingID string) error {
	g.mu.Lock()
	if g.receivingOptions.State != StateReady {
		g.mu.Unlock()
		return fmt.Errorf("receiving institutions are not loaded")
	}
	if !containsValue(g.receivingOptions.Options, receivingID) {
		g.mu.Unlock()
		return fmt.Errorf("receiving institution %s is not available for this selection", receivingID)
	}
	if g.sel.ReceivingID == receivingID {
		g.mu.Unlock()
		return nil
	}

	g.clearYears()
	g.sel.ReceivingID = receivingID
	g.gen++
	g.yearOptions.NodeStatus = loading()
	go g.loadYearOptions(g.gen, g.sendingIDsLocked(), receivingID)
	g.mu.Unlock()

	g.notify()
	return nil
}

func (g *Graph) loadYearOptions(gen uint64, sendingIDs []string, receivingID string) {
	options, warnings, err := g.years.YearOptions(g.runCtx(), sendingIDs, receivingID)

	g.mu.Lock()
	if gen != g.gen {
		g.mu.Unlock()
		return
	}
	switch {
	case err != nil:
		g.yearOptions = optionsNode{NodeStatus: failed(err.Error())}
	case len(options) == 0:
		g.yearOptions = optionsNode{
			NodeStatus: failed("no academic year is covered by every selected institution"),
			Warnings:   warnings,
		}
	default:
		g.yearOptions = optionsNode{NodeStatus: ready(), Options: options, Warnings: warnings}
	}
	g.mu.Unlock()

	g.notify()
}

// SetYear picks an academic year from the loaded options, then checks
// category availability and loads the major listing
func (g *Graph) SetYear(yearID string) error {
	g.mu.Lock()
	if g.yearOptions.State != StateReady {
		g.mu.Unlock()
		return fmt.Errorf("academic years are not loaded")
	}
	if !containsValue(g.yearOptions.Options, yearID) {
		g.mu.Unlock()
		return fmt.Errorf("academic year %s is not available for this selection", yearID)
	}
	if g.sel.YearID == yearID {
		g.mu.Unlock()
		return nil
	}

	g.clearMajors()
	g.sel.YearID = yearID
	g.gen++
	g.availability.NodeStatus = loading()
	go g.loadMajorData(g.gen, g.sel.Sending[0].ID, g.sel.ReceivingID, yearID)
	g.mu.Unlock()

	g.notify()
	return nil
}

// loadMajorData resolves the availability gate, switches the category when
// the current one has no agreements, then loads the listing
func (g *Graph) loadMajorData(gen uint64, sendingID, receivingID, yearID string) {
	availability, err := g.majors.Check(g.runCtx(), sendingID, receivingID, yearID)

	g.mu.Lock()
	if gen != g.gen {
		g.mu.Unlock()
		return
	}
	if err != nil {
		g.availability = availabilityNode{NodeStatus: failed(err.Error())}
		g.mu.Unlock()
		g.notify()
		return
	}

	g.availability = availabilityNode{NodeStatus: ready(), Availability: availability}
	if switched, didSwitch := availability.Switch(g.sel.Category); didSwitch {
		log.Printf("Selection: No %s agreements for this context, switching to %s", g.sel.Category, switched)
		g.sel.Category = switched
	}
	if availability.Empty() {
		g.majorOptions = optionsNode{NodeStatus: failed("no major or department agreements exist for this selection")}
		g.mu.Unlock()
		g.notify()
		return
	}
	category := g.sel.Category
	g.majorOptions.NodeStatus = loading()
	g.mu.Unlock()
	g.notify()

	g.loadMajorList(gen, sendingID, receivingID, yearID, category)
}

func (g *Graph) loadMajorList(gen uint64, sendingID, receivingID, yearID string, category assist.Category) {
	listing, err := g.majors.List(g.runCtx(), sendingID, receivingID, yearID, category)

	g.mu.Lock()
	if gen != g.gen {
		g.mu.Unlock()
		return
	}
	if err != nil {
		g.majorOptions = optionsNode{NodeStatus: failed(err.Error())}
	} else {
		g.majorOptions = optionsNode{NodeStatus: ready(), Options: listing}
	}
	g.mu.Unlock()

	g.notify()
}

// SetCategory switches between major and department views. The major choice
// and everything below it is invalidated; the listing reloads when the chain
// above is complete.
func (g *Graph) SetCategory(category assist.Category) error {
	if !category.Valid() {
		return fmt.Errorf("unknown category %q", category)
	}

	g.mu.Lock()
	if g.sel.Category == category {
		g.mu.Unlock()
		return nil
	}

	g.sel.Category = category
	g.sel.MajorKey = ""
	g.sel.MajorName = ""
	g.majorOptions = optionsNode{NodeStatus: idle()}
	g.clearAgreements()
	g.gen++

	chainComplete := len(g.sel.Sending) > 0 && g.sel.ReceivingID != "" && g.sel.YearID != ""
	if chainComplete {
		if g.availability.State == StateReady && !g.availability.Has(category) {
			g.majorOptions = optionsNode{NodeStatus: failed(fmt.Sprintf("no %s agreements exist for this selection", category))}
		} else {
			g.majorOptions.NodeStatus = loading()
			go g.loadMajorList(g.gen, g.sel.Sending[0].ID, g.sel.ReceivingID, g.sel.YearID, category)
		}
	}
	g.mu.Unlock()

	g.notify()
	return nil
}

// SetMajor picks a major (or department) from the loaded listing and starts
// the agreement fetch
func (g *Graph) SetMajor(majorKey string) error {
	g.mu.Lock()
	if g.majorOptions.State != StateReady {
		g.mu.Unlock()
		return fmt.Errorf("majors are not loaded")
	}
	majorName, found := nameForValue(g.majorOptions.Options, majorKey)
	if !found {
		g.mu.Unlock()
		return fmt.Errorf("major %s is not available for this selection", majorKey)
	}
	if g.sel.MajorKey == majorKey {
		g.mu.Unlock()
		return nil
	}

	g.clearAgreements()
	g.sel.MajorKey = majorKey
	g.sel.MajorName = majorName
	g.gen++
	g.agreementSet.NodeStatus = loading()
	sending := append([]assist.Institution(nil), g.sel.Sending...)
	go g.loadAgreements(g.gen, sending, g.sel.ReceivingID, g.sel.YearID, majorKey)
	g.mu.Unlock()

	g.notify()
	return nil
}

func (g *Graph) loadAgreements(gen uint64, sending []assist.Institution, receivingID, yearID, majorKey string) {
	set, warnings, err := g.agreements.FetchSet(g.runCtx(), sending, receivingID, yearID, majorKey)

	g.mu.Lock()
	if gen != g.gen {
		g.mu.Unlock()
		return
	}
	if err != nil {
		g.agreementSet = agreementsNode{NodeStatus: failed(err.Error())}
		g.mu.Unlock()
		g.notify()
		return
	}
	g.agreementSet = agreementsNode{NodeStatus: ready(), Agreements: set, Warnings: warnings}
	g.documents.NodeStatus = loading()
	g.mu.Unlock()
	g.notify()

	images := g.agreements.AggregateImages(g.runCtx(), set)

	g.mu.Lock()
	if gen != g.gen {
		g.mu.Unlock()
		return
	}
	g.documents = documentsNode{
		NodeStatus:  ready(),
		set:         images,
		ActiveIndex: images.InitialActiveIndex(),
	}
	g.mu.Unlock()

	g.notify()
}

// SetActiveAgreement switches which agreement's document is presented.
// All documents are already aggregated, so this is a pure in-memory move.
func (g *Graph) SetActiveAgreement(index int) error {
	g.mu.Lock()
	if g.documents.State != StateReady {
		g.mu.Unlock()
		return fmt.Errorf("documents are not loaded")
	}
	if index < 0 || index >= g.documents.set.Len() {
		g.mu.Unlock()
		return fmt.Errorf("agreement index %d out of range", index)
	}
	if g.documents.ActiveIndex == index {
		g.mu.Unlock()
		return nil
	}
	g.documents.ActiveIndex = index
	g.mu.Unlock()

	g.notify()
	return nil
}

// Retry relaunches the load of the deepest failed node using the current
// selection. Returns an error when nothing has failed.
func (g *Graph) Retry() error {
	g.mu.Lock()
	switch {
	case g.receivingOptions.State == StateError:
		g.gen++
		g.receivingOptions = optionsNode{NodeStatus: loading()}
		go g.loadReceivingOptions(g.gen, g.sendingIDsLocked())
	case g.yearOptions.State == StateError:
		g.gen++
		g.yearOptions = optionsNode{NodeStatus: loading()}
		go g.loadYearOptions(g.gen, g.sendingIDsLocked(), g.sel.ReceivingID)
	case g.availability.State == StateError || g.majorOptions.State == StateError:
		g.gen++
		g.availability = availabilityNode{NodeStatus: loading()}
		g.majorOptions = optionsNode{NodeStatus: idle()}
		go g.loadMajorData(g.gen, g.sel.Sending[0].ID, g.sel.ReceivingID, g.sel.YearID)
	case g.agreementSet.State == StateError:
		g.gen++
		g.agreementSet = agreementsNode{NodeStatus: loading()}
		sending := append([]assist.Institution(nil), g.sel.Sending...)
		go g.loadAgreements(g.gen, sending, g.sel.ReceivingID, g.sel.YearID, g.sel.MajorKey)
	default:
		g.mu.Unlock()
		return fmt.Errorf("no failed step to retry")
	}
	g.mu.Unlock()

	g.notify()
	return nil
}

func sameInstitutions(a, b []assist.Institution) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func containsValue(m assist.NameIDMap, value string) bool {
	_, found := nameForValue(m, value)
	return found
}

func nameForValue(m assist.NameIDMap, value string) (string, bool) {
	for name, v := range m {
		if v == value {
			return name, true
		}
	}
	return "", false
}
