package related

// PanelState is an in-memory Panel.
type PanelState struct {
	target          Target
	classes         map[string]bool
	NodeInfoVisible bool
	Visible         bool
	Graph           *Graph
}

func NewPanel(t Target) *PanelState {
	return &PanelState{target: t, classes: map[string]bool{}, NodeInfoVisible: true}
}

func (p *PanelState) Target() Target            { return p.target }
func (p *PanelState) HasClass(name string) bool { return p.classes[name] }
func (p *PanelState) AddClass(name string)      { p.classes[name] = true }
func (p *PanelState) ToggleClass(name string)   { p.classes[name] = !p.classes[name] }
func (p *PanelState) HideNodeInfo()             { p.NodeInfoVisible = false }
func (p *PanelState) ToggleVisible()            { p.Visible = !p.Visible }
func (p *PanelState) SetGraph(g *Graph)         { p.Graph = g }
