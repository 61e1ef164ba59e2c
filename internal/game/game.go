package game

import (
	"fmt"
	"image"
	"image/color"
	"math/rand"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/sirupsen/logrus"

	"github.com/Garsondee/Rad-Mapper/internal/heatmap"
	"github.com/Garsondee/Rad-Mapper/internal/sim"
)

// State is the screen the game is showing.
type State uint8

const (
	StateMenu State = iota
	StateSettings
	StateGroundMapping
	StateAerialMapping
	StateTeaching
	StateSpectrumID
	StateGameOver
	StateShowSource
	StateShowMaps
)

func (s State) String() string {
	switch s {
	case StateMenu:
		return "menu"
	case StateSettings:
		return "settings"
	case StateGroundMapping:
		return "ground"
	case StateAerialMapping:
		return "aerial"
	case StateTeaching:
		return "teaching"
	case StateSpectrumID:
		return "spectrum"
	case StateGameOver:
		return "game-over"
	case StateShowSource:
		return "show-source"
	case StateShowMaps:
		return "show-maps"
	default:
		return "unknown"
	}
}

// playing reports whether a session is running in this state.
func (s State) playing() bool {
	return s >= StateGroundMapping && s <= StateSpectrumID
}

// stateFor maps a session mode to the screen that runs it.
func stateFor(m sim.Mode) State {
	switch m {
	case sim.ModeAerialMapping:
		return StateAerialMapping
	case sim.ModeTeaching:
		return StateTeaching
	case sim.ModeSpectrum:
		return StateSpectrumID
	default:
		return StateGroundMapping
	}
}

// menuItem is one entry on the main menu.
type menuItem struct {
	label string
	run   func(g *Game) error
}

var menuItems = []menuItem{
	{"Ground Mapping", func(g *Game) error { return g.startSession(sim.ModeGroundMapping) }},
	{"Aerial Mapping", func(g *Game) error { return g.startSession(sim.ModeAerialMapping) }},
	{"Spectrum ID", func(g *Game) error { return g.startSession(sim.ModeSpectrum) }},
	{"Teaching Mode", func(g *Game) error { return g.startSession(sim.ModeTeaching) }},
	{"Show Maps", func(g *Game) error { g.openMaps(); return nil }},
	{"Settings", func(g *Game) error { g.state = StateSettings; return nil }},
	{"Quit", func(*Game) error { return ebiten.Termination }},
}

var (
	colorWindow   = color.RGBA{R: 12, G: 12, B: 16, A: 255}
	colorGrass    = color.RGBA{R: 40, G: 90, B: 40, A: 255}
	colorFloor    = color.RGBA{R: 120, G: 110, B: 95, A: 255}
	colorWall     = color.RGBA{R: 180, G: 180, B: 180, A: 255}
	colorWalker   = color.RGBA{R: 60, G: 140, B: 255, A: 255}
	colorDrone    = color.RGBA{R: 230, G: 230, B: 60, A: 255}
	colorSource   = color.RGBA{R: 255, G: 220, B: 0, A: 255}
	colorMeasured = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	colorCPS      = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	colorSelected = color.RGBA{R: 255, G: 105, B: 180, A: 255}
)

// Config is the startup configuration of the game.
type Config struct {
	Settings sim.Settings
	Seed     int64  // 0 seeds from the clock
	PlotDir  string // where finished maps are written; empty disables
	Log      *logrus.Logger
	Width    int // initial window size
	Height   int
}

// Game implements ebiten.Game for the survey exercises.
type Game struct {
	cfg      Config
	settings sim.Settings
	log      *logrus.Logger
	rng      *rand.Rand

	state     State
	menuIndex int
	setIndex  int
	status    string

	width, height int // logical screen size
	pendingW      int // size seen by Layout, applied in Update
	pendingH      int

	session      *sim.Session
	ticker       ticker
	lastReading  sim.Reading
	instructions bool
	events       *EventLog

	results    *sim.ResultCache
	lastResult *sim.Result
	lastReport string

	heatImg   *ebiten.Image // game-over map without markers
	revealImg *ebiten.Image // game-over map with markers
	mapsImg   *ebiten.Image // side-by-side comparison
	minimap   *ebiten.Image
	text      textCache
}

// New builds a game at the menu.
func New(cfg Config) (*Game, error) {
	if err := cfg.Settings.Validate(); err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}
	if cfg.Log == nil {
		cfg.Log = logrus.New()
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = 1280, 720
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	g := &Game{
		cfg:      cfg,
		settings: cfg.Settings,
		log:      cfg.Log,
		rng:      rand.New(rand.NewSource(seed)), // #nosec G404 -- game only
		width:    cfg.Width,
		height:   cfg.Height,
		pendingW: cfg.Width,
		pendingH: cfg.Height,
		events:   NewEventLog(),
		results:  sim.NewResultCache(),
		text:     textCache{},
	}
	g.log.WithField("seed", seed).Info("game ready")
	return g, nil
}

// playWidth is the width of the map area left of the event panel.
func (g *Game) playWidth() int {
	return max(1, g.width-logPanelWidth)
}

// gridSize is the grid that fits the play area at the configured cell size.
func (g *Game) gridSize() (int, int) {
	cell := max(1, g.settings.CellSize)
	return max(sim.MinGridSize, g.playWidth()/cell), max(sim.MinGridSize, g.height/cell)
}

// cellPixels is the on-screen size of one grid cell for the current session.
func (g *Game) cellPixels() float32 {
	if g.session == nil {
		return float32(g.settings.CellSize)
	}
	return min(float32(g.playWidth())/float32(g.session.Width), float32(g.height)/float32(g.session.Height))
}

func (g *Game) startSession(mode sim.Mode) error {
	if err := g.beginSession(mode); err != nil {
		g.status = "Could not start: " + err.Error()
		g.log.WithError(err).WithField("mode", mode).Error("start session")
		return nil
	}
	g.refreshMinimap()
	return nil
}

// beginSession builds a session for mode on a grid fitting the window.
func (g *Game) beginSession(mode sim.Mode) error {
	gw, gh := g.gridSize()
	var (
		s   *sim.Session
		err error
	)
	switch mode {
	case sim.ModeGroundMapping, sim.ModeAerialMapping:
		s, err = sim.NewMappingSession(mode, gw, gh, g.settings, g.rng)
	case sim.ModeTeaching:
		s, err = sim.NewTeachingSession(gw, gh, g.rng)
	default:
		s, err = sim.NewSpectrumSession(gw, gh, g.rng)
	}
	if err != nil {
		return err
	}

	g.session = s
	g.ticker = newTicker(mode.TickRate())
	g.lastReading = sim.Reading{Cell: s.Detector()}
	g.instructions = true
	g.events.Reset()
	g.events.Sync(s.Log)
	g.state = stateFor(mode)
	g.status = ""
	g.sessionLog().WithField("grid", fmt.Sprintf("%dx%d", gw, gh)).Info("session started")
	return nil
}

func (g *Game) sessionLog() *logrus.Entry {
	if g.session == nil {
		return logrus.NewEntry(g.log)
	}
	return g.log.WithFields(logrus.Fields{
		"session": g.session.ID.String(),
		"mode":    g.session.Mode.String(),
		"sources": len(g.session.Sources),
	})
}

func (g *Game) Update() error {
	g.applyResize()

	switch {
	case g.state == StateMenu:
		return g.updateMenu()
	case g.state == StateSettings:
		g.updateSettings()
	case g.state.playing():
		g.updatePlaying()
	case g.state == StateGameOver:
		if justPressed(ebiten.KeySpace, ebiten.KeyEnter) {
			g.state = StateShowSource
		}
		g.handleCopy()
		if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
			g.state = StateMenu
		}
	case g.state == StateShowSource, g.state == StateShowMaps:
		g.handleCopy()
		if justPressed(ebiten.KeySpace, ebiten.KeyEnter, ebiten.KeyEscape) {
			g.state = StateMenu
		}
	}
	return nil
}

func justPressed(keys ...ebiten.Key) bool {
	for _, k := range keys {
		if inpututil.IsKeyJustPressed(k) {
			return true
		}
	}
	return false
}

// heldDirection reads the movement keys. When several are held the first
// in left, right, up, down order wins.
func heldDirection() sim.Direction {
	switch {
	case ebiten.IsKeyPressed(ebiten.KeyArrowLeft) || ebiten.IsKeyPressed(ebiten.KeyA):
		return sim.DirLeft
	case ebiten.IsKeyPressed(ebiten.KeyArrowRight) || ebiten.IsKeyPressed(ebiten.KeyD):
		return sim.DirRight
	case ebiten.IsKeyPressed(ebiten.KeyArrowUp) || ebiten.IsKeyPressed(ebiten.KeyW):
		return sim.DirUp
	case ebiten.IsKeyPressed(ebiten.KeyArrowDown) || ebiten.IsKeyPressed(ebiten.KeyS):
		return sim.DirDown
	default:
		return sim.DirNone
	}
}

func (g *Game) updateMenu() error {
	if justPressed(ebiten.KeyArrowUp, ebiten.KeyW) {
		g.menuIndex = (g.menuIndex + len(menuItems) - 1) % len(menuItems)
	}
	if justPressed(ebiten.KeyArrowDown, ebiten.KeyS) {
		g.menuIndex = (g.menuIndex + 1) % len(menuItems)
	}
	g.handleCopy()
	if justPressed(ebiten.KeyEnter, ebiten.KeySpace) {
		return menuItems[g.menuIndex].run(g)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	return nil
}

func (g *Game) updateSettings() {
	fields := sim.SettingFields
	if justPressed(ebiten.KeyArrowUp, ebiten.KeyW) {
		g.setIndex = (g.setIndex + len(fields) - 1) % len(fields)
	}
	if justPressed(ebiten.KeyArrowDown, ebiten.KeyS) {
		g.setIndex = (g.setIndex + 1) % len(fields)
	}
	delta := 0
	if justPressed(ebiten.KeyArrowRight, ebiten.KeyD) {
		delta = 1
	}
	if justPressed(ebiten.KeyArrowLeft, ebiten.KeyA) {
		delta = -1
	}
	if delta != 0 {
		f := fields[g.setIndex]
		if g.settings.Adjust(f, delta) {
			g.log.WithField(f.String(), g.settings.Get(f)).Debug("setting changed")
		}
	}
	if justPressed(ebiten.KeyEscape, ebiten.KeyEnter) {
		g.state = StateMenu
	}
}

func (g *Game) updatePlaying() {
	s := g.session
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		s.Expire()
		g.sessionLog().Info("session abandoned")
		g.session = nil
		g.minimap = nil
		g.state = StateMenu
		return
	}
	if g.instructions {
		if justPressed(ebiten.KeySpace, ebiten.KeyEnter) {
			g.instructions = false
		}
		return
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		g.copyReport(FormatReport(s.Snapshot(), s.Log.Entries()))
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) && (s.Mode == sim.ModeTeaching || s.Mode == sim.ModeSpectrum) {
		g.measure()
	}

	dir := heldDirection()
	for n := g.ticker.advance(ebiten.TPS()); n > 0; n-- {
		g.lastReading = s.Step(dir, g.ticker.step())
		for _, e := range g.events.Sync(s.Log) {
			g.sessionLog().WithField("tick", e.Tick).Debugf("%s/%s %s", e.Category, e.Key, e.Value)
		}
		if s.Expired() {
			g.finishSession()
			return
		}
	}
	g.refreshMinimap()
}

// measure records a spectrum measurement of the source in reach, if any.
func (g *Game) measure() {
	s := g.session
	i := s.NearSource(sim.MeasureRadius)
	if i < 0 {
		g.status = "No source in reach"
		return
	}
	s.MarkMeasured(i)
	g.events.Sync(s.Log)
	g.status = measurementText(s.Sources[i])
	g.sessionLog().WithField("isotope", s.Sources[i].Isotope.String()).Info("source measured")
	if s.Mode == sim.ModeSpectrum && s.MeasuredCount() == len(s.Sources) {
		g.status = "All sources measured! ESC returns to the menu"
	}
}

func (g *Game) finishSession() {
	s := g.session
	res := s.Snapshot()
	g.lastResult = &res
	g.lastReport = FormatReport(res, s.Log.Entries())
	mapping := s.Mode == sim.ModeGroundMapping || s.Mode == sim.ModeAerialMapping
	if mapping {
		g.results.Store(res)
	}
	g.mapsImg = nil
	g.renderResult()

	entry := g.sessionLog().WithFields(logrus.Fields{
		"coverage": fmt.Sprintf("%.1f%%", 100*res.Coverage),
		"peak":     humanize.Commaf(res.Peak),
		"ticks":    res.Ticks,
	})
	entry.Info("session finished")

	if mapping && g.cfg.PlotDir != "" {
		g.writePlot(res)
	}
	g.session = nil
	g.minimap = nil
	g.state = StateGameOver
}

// renderInput builds the heatmap request for a result at the given size.
func renderInput(res sim.Result, w, h int, markers bool) heatmap.Input {
	in := heatmap.Input{
		Width:    w,
		Height:   h,
		Counts:   res.Counts,
		Floors:   res.Floors,
		Walls:    res.Walls,
		MaxScale: heatmap.MaxScaleFor(res.Modality() == sim.Aerial),
		Aerial:   res.Modality() == sim.Aerial,
	}
	if markers {
		in.Sources = sim.SourceCells(res.Sources)
	}
	return in
}

// renderResult redraws the game-over maps at the current play size.
func (g *Game) renderResult() {
	g.heatImg, g.revealImg = nil, nil
	if g.lastResult == nil {
		return
	}
	for _, markers := range []bool{false, true} {
		img, err := heatmap.Render(renderInput(*g.lastResult, g.playWidth(), g.height, markers))
		if err != nil {
			g.log.WithError(err).Warn("render heatmap")
			return
		}
		if markers {
			g.revealImg = ebiten.NewImageFromImage(img)
		} else {
			g.heatImg = ebiten.NewImageFromImage(img)
		}
	}
}

func (g *Game) writePlot(res sim.Result) {
	img, err := heatmap.Render(renderInput(res, g.playWidth(), g.height, false))
	if err != nil {
		g.log.WithError(err).Warn("render plot")
		return
	}
	path := filepath.Join(g.cfg.PlotDir, heatmap.FileName(res.Modality().String()))
	n, err := heatmap.WritePNG(path, img)
	if err != nil {
		g.log.WithError(err).Warn("write plot")
		return
	}
	g.log.WithFields(logrus.Fields{"path": path, "size": humanize.Bytes(uint64(n))}).Info("plot saved")
}

// openMaps shows the cached ground and aerial results side by side.
func (g *Game) openMaps() {
	ground, okG := g.results.Get(sim.Ground)
	aerial, okA := g.results.Get(sim.Aerial)
	if !okG && !okA {
		g.status = "No maps yet: finish a ground or aerial survey first"
		return
	}
	half := g.width / 2
	h := g.height - 40
	var left, right image.Image
	if okG {
		if img, err := heatmap.Render(renderInput(ground, half, h, true)); err == nil {
			left = img
		}
	}
	if okA {
		if img, err := heatmap.Render(renderInput(aerial, half, h, true)); err == nil {
			right = img
		}
	}
	g.mapsImg = ebiten.NewImageFromImage(heatmap.SideBySide(2*half, h, left, right))
	g.state = StateShowMaps
}

func (g *Game) refreshMinimap() {
	s := g.session
	if s == nil || (s.Mode != sim.ModeGroundMapping && s.Mode != sim.ModeAerialMapping) {
		g.minimap = nil
		return
	}
	img, err := heatmap.Minimap(heatmap.MinimapInput{
		Counts:   s.Counts(),
		Floors:   s.Floors,
		Walls:    s.Walls,
		Visited:  s.Visited(),
		Detector: s.Detector(),
		Aerial:   s.Modality() == sim.Aerial,
	})
	if err != nil {
		g.log.WithError(err).Warn("minimap")
		return
	}
	if g.minimap == nil || g.minimap.Bounds().Size() != img.Bounds().Size() {
		g.minimap = ebiten.NewImage(img.Bounds().Dx(), img.Bounds().Dy())
	}
	g.minimap.WritePixels(img.Pix)
}

func (g *Game) handleCopy() {
	if inpututil.IsKeyJustPressed(ebiten.KeyC) && g.lastReport != "" {
		g.copyReport(g.lastReport)
	}
}

func (g *Game) copyReport(text string) {
	if err := CopyReport(text); err != nil {
		g.status = "Copy failed: " + err.Error()
		g.log.WithError(err).Warn("copy report")
		return
	}
	g.status = "Report copied to clipboard"
}

// applyResize picks up a window size change from Layout and re-renders
// cached maps.
func (g *Game) applyResize() {
	if !g.resizeSession() {
		return
	}
	g.mapsImg = nil
	if g.state == StateShowMaps {
		g.openMaps()
	}
	g.renderResult()
	g.refreshMinimap()
}

// resizeSession adopts the pending window size and moves a running session
// onto a grid that fits it. It reports whether the size changed.
func (g *Game) resizeSession() bool {
	if g.pendingW == g.width && g.pendingH == g.height {
		return false
	}
	g.width, g.height = g.pendingW, g.pendingH
	if g.session == nil {
		return true
	}
	gw, gh := g.gridSize()
	if gw == g.session.Width && gh == g.session.Height {
		return true
	}
	ns, err := g.session.Resize(gw, gh)
	if err != nil {
		g.sessionLog().WithError(err).Warn("resize kept the old grid")
		return true
	}
	g.session = ns
	g.events.Sync(ns.Log)
	return true
}

// Layout tracks the window size; the change is applied on the next Update.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth > 0 && outsideHeight > 0 {
		g.pendingW, g.pendingH = outsideWidth, outsideHeight
	}
	return g.pendingW, g.pendingH
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colorWindow)
	switch {
	case g.state == StateMenu:
		g.drawMenu(screen)
	case g.state == StateSettings:
		g.drawSettings(screen)
	case g.state.playing():
		g.drawPlaying(screen)
	case g.state == StateGameOver:
		g.drawResult(screen, g.heatImg, "Time's up! SPACE reveals the sources  C copies the report")
	case g.state == StateShowSource:
		g.drawResult(screen, g.revealImg, "Sources revealed. SPACE returns to the menu")
	case g.state == StateShowMaps:
		g.drawMaps(screen)
	}
}

func (g *Game) drawMenu(screen *ebiten.Image) {
	cx := g.width / 2
	g.text.draw(screen, "Rad Mapper", cx, g.height/6, 5, true, colorTitle)
	y := g.height/2 - len(menuItems)*24
	for i, item := range menuItems {
		col := color.Color(colorHUDText)
		label := item.label
		if i == g.menuIndex {
			col = colorSelected
			label = "> " + label + " <"
		}
		g.text.draw(screen, label, cx, y+i*48, 2, true, col)
	}
	if g.status != "" {
		g.text.draw(screen, g.status, cx, g.height-60, 1, true, colorPeak)
	}
	ebitenutil.DebugPrintAt(screen, "UP/DOWN select  ENTER start  ESC quit", 8, g.height-20)
}

func (g *Game) drawSettings(screen *ebiten.Image) {
	cx := g.width / 2
	g.text.draw(screen, "Settings", cx, g.height/6, 4, true, colorTitle)
	y := g.height / 3
	for i, f := range sim.SettingFields {
		unit := ""
		if f == sim.FieldGroundSeconds || f == sim.FieldAerialSeconds {
			unit = " s"
		} else if f == sim.FieldCellSize {
			unit = " px"
		}
		line := fmt.Sprintf("%s: %d%s", f, g.settings.Get(f), unit)
		col := color.Color(colorHUDText)
		if i == g.setIndex {
			col = colorSelected
			line = "< " + line + " >"
		}
		g.text.draw(screen, line, cx, y+i*48, 2, true, col)
	}
	ebitenutil.DebugPrintAt(screen, "UP/DOWN select  LEFT/RIGHT adjust  ESC back", 8, g.height-20)
}

func (g *Game) drawPlaying(screen *ebiten.Image) {
	s := g.session
	if s == nil {
		return
	}
	cs := g.cellPixels()
	playW := g.playWidth()

	vector.FillRect(screen, 0, 0, float32(s.Width)*cs, float32(s.Height)*cs, colorGrass, false)
	cell := func(c sim.Cell, col color.Color) {
		vector.FillRect(screen, float32(c.X)*cs, float32(c.Y)*cs, cs, cs, col, false)
	}
	s.Floors.Each(func(c sim.Cell) { cell(c, colorFloor) })
	s.Walls.Each(func(c sim.Cell) { cell(c, colorWall) })

	if s.Mode == sim.ModeSpectrum {
		for i, src := range s.Sources {
			cx, cy := (float32(src.X)+0.5)*cs, (float32(src.Y)+0.5)*cs
			vector.FillCircle(screen, cx, cy, cs/2, colorSource, true)
			if s.IsMeasured(i) {
				vector.StrokeRect(screen, float32(src.X)*cs-2, float32(src.Y)*cs-2, cs+4, cs+4, 3, colorMeasured, false)
				ebitenutil.DebugPrintAt(screen, src.Isotope.String(), int(float32(src.X)*cs), int(float32(src.Y+1)*cs))
			}
		}
	}

	det := s.Detector()
	dx, dy := (float32(det.X)+0.5)*cs, (float32(det.Y)+0.5)*cs
	body := colorWalker
	if s.Modality() == sim.Aerial {
		body = colorDrone
		vector.StrokeCircle(screen, dx, dy, cs*0.9, 2, body, true)
	}
	vector.FillCircle(screen, dx, dy, cs*0.4, body, true)
	g.text.draw(screen, "CPS: "+formatCPS(g.lastReading.CPS), int(dx), int(float32(det.Y)*cs)-2*debugLineH, 1.5, true, colorCPS)

	drawPanel(screen, hudLines(s, g.lastReading), playW-8, 32)
	drawMinimap(screen, g.minimap, g.height)
	drawHint(screen, modeHint(s), playW)
	if g.status != "" {
		vector.FillRect(screen, 0, float32(g.height-24), float32(playW), 24, colorPanel, false)
		ebitenutil.DebugPrintAt(screen, g.status, 8, g.height-20)
	}
	g.events.Draw(screen, playW, g.height)

	if g.instructions {
		title, lines := instructions(s.Mode, g.settings)
		g.text.drawOverlay(screen, title, lines, g.width, g.height)
	}
}

func (g *Game) drawResult(screen, img *ebiten.Image, caption string) {
	if img != nil {
		screen.DrawImage(img, nil)
	}
	g.events.Draw(screen, g.playWidth(), g.height)
	vector.FillRect(screen, 0, float32(g.height-24), float32(g.playWidth()), 24, colorPanel, false)
	line := caption
	if g.status != "" {
		line = g.status
	}
	ebitenutil.DebugPrintAt(screen, line, 8, g.height-20)
}

func (g *Game) drawMaps(screen *ebiten.Image) {
	if g.mapsImg != nil {
		var op ebiten.DrawImageOptions
		op.GeoM.Translate(0, 40)
		screen.DrawImage(g.mapsImg, &op)
	}
	g.text.draw(screen, "Ground Map", g.width/4, 8, 2, true, colorHUDText)
	g.text.draw(screen, "Aerial Map", 3*g.width/4, 8, 2, true, colorHUDText)
}
