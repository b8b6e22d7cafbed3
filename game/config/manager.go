package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"barikade/game/board"
	"barikade/game/engine"
)

var (
	ErrBoardNotFound = errors.New("board not found")
	ErrInvalidBoard  = errors.New("invalid board")
)

// DefaultBoardName is the board served to rooms that never ask for one
const DefaultBoardName = "classic"

// BoardInfo summarizes one loadable board for listings
type BoardInfo struct {
	Filename    string   `json:"filename"`
	BoardID     string   `json:"boardId"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Nodes       int      `json:"nodes"`
	Edges       int      `json:"edges"`
	Colors      []string `json:"colors"`
}

// Manager handles board definition loading and caching
type Manager struct {
	boardDir     string
	defaultBoard *board.Definition
	boards       map[string]*board.Definition
	mu           sync.RWMutex
}

// NewManager creates a new board manager rooted at boardDir
func NewManager(boardDir string) (*Manager, error) {
	if _, err := os.Stat(boardDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("board directory does not exist: %s", boardDir)
	}

	m := &Manager{
		boardDir: boardDir,
		boards:   make(map[string]*board.Definition),
	}

	if err := m.loadDefaultBoard(); err != nil {
		return nil, fmt.Errorf("failed to load default board: %w", err)
	}

	return m, nil
}

// LoadBoard loads a board definition by name. The returned definition is the
// cached instance; callers that mutate it must Clone first.
func (m *Manager) LoadBoard(name string) (*board.Definition, error) {
	m.mu.RLock()
	if def, exists := m.boards[name]; exists {
		m.mu.RUnlock()
		return def, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadBoardLocked(name)
}

// ListBoards returns information about all available boards
func (m *Manager) ListBoards() ([]*BoardInfo, error) {
	entries, err := os.ReadDir(m.boardDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read board directory: %w", err)
	}

	var boards []*BoardInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), ".json")
		def, err := m.LoadBoard(name)
		if err != nil {
			// Skip unparsable boards rather than failing the listing.
			continue
		}

		boards = append(boards, describeBoard(entry.Name(), name, def))
	}

	return boards, nil
}

func describeBoard(filename, id string, def *board.Definition) *BoardInfo {
	colors := make([]string, 0, len(def.StartNodes))
	for _, c := range engine.Colors {
		if _, ok := def.StartNodes[c.String()]; ok {
			colors = append(colors, c.String())
		}
	}
	return &BoardInfo{
		Filename:    filename,
		BoardID:     id,
		Name:        def.Name,
		Description: def.Description,
		Nodes:       len(def.Nodes),
		Edges:       len(def.Edges),
		Colors:      colors,
	}
}

// GetDefault returns the default board definition
func (m *Manager) GetDefault() *board.Definition {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultBoard
}

// SetDefault sets the default board by name
func (m *Manager) SetDefault(name string) error {
	def, err := m.LoadBoard(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultBoard = def
	return nil
}

// RefreshCache reloads all cached boards from disk
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.boards = make(map[string]*board.Definition)
	return m.loadDefaultBoard()
}

// loadDefaultBoard loads the default board, falling back to the first
// loadable board on disk and finally to a built-in minimal board.
// Callers hold the write lock or have exclusive access.
func (m *Manager) loadDefaultBoard() error {
	def, err := m.loadBoardLocked(DefaultBoardName)
	if err != nil {
		entries, listErr := os.ReadDir(m.boardDir)
		if listErr != nil {
			m.defaultBoard = MinimalDefinition()
			return nil
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
				continue
			}
			if def, err = m.loadBoardLocked(strings.TrimSuffix(entry.Name(), ".json")); err == nil {
				m.defaultBoard = def
				return nil
			}
		}
		m.defaultBoard = MinimalDefinition()
		return nil
	}

	m.defaultBoard = def
	return nil
}

// loadBoardLocked reads, parses, and caches one board file. The caller
// holds the write lock or has exclusive access to the manager.
func (m *Manager) loadBoardLocked(name string) (*board.Definition, error) {
	// Double-check after acquiring write lock
	if def, exists := m.boards[name]; exists {
		return def, nil
	}

	filename := name
	if !strings.HasSuffix(filename, ".json") {
		filename = name + ".json"
	}

	data, err := os.ReadFile(filepath.Join(m.boardDir, filename))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrBoardNotFound
		}
		return nil, fmt.Errorf("failed to read board file: %w", err)
	}

	var def board.Definition
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to parse board: %w", err)
	}

	// Building the graph sanitizes the definition and surfaces structural
	// problems before any room plays on it.
	if _, err := board.NewGraph(&def); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBoard, err)
	}

	m.boards[name] = &def
	return &def, nil
}

// SaveBoard writes a board definition to disk and caches it
func (m *Manager) SaveBoard(name string, def *board.Definition) error {
	if _, err := board.NewGraph(def); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBoard, err)
	}

	filename := name
	if !strings.HasSuffix(filename, ".json") {
		filename = name + ".json"
	}

	data, err := json.MarshalIndent(def, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal board: %w", err)
	}

	if err := os.WriteFile(filepath.Join(m.boardDir, filename), data, 0644); err != nil {
		return fmt.Errorf("failed to write board file: %w", err)
	}

	m.mu.Lock()
	m.boards[name] = def
	m.mu.Unlock()

	return nil
}

// MinimalDefinition builds a small playable board: a twelve-node ring with
// the goal hanging off r0, a start spur for each color, and a full set of
// house slots. It keeps the server usable when the board directory is empty.
func MinimalDefinition() *board.Definition {
	def := &board.Definition{
		Name:        "minimal",
		Description: "Built-in fallback board",
		StartNodes:  make(map[string]string, len(engine.Colors)),
		Barricades:  []string{},
		GoalNode:    "goal",
	}

	const ringSize = 12
	def.Nodes = append(def.Nodes, board.Node{
		ID: "goal", Kind: board.KindBoard, Flags: board.Flags{Goal: true, NoBarricade: true},
	})
	for i := 0; i < ringSize; i++ {
		def.Nodes = append(def.Nodes, board.Node{ID: fmt.Sprintf("r%d", i), Kind: board.KindBoard})
		def.Edges = append(def.Edges, board.Edge{fmt.Sprintf("r%d", i), fmt.Sprintf("r%d", (i+1)%ringSize)})
	}
	def.Edges = append(def.Edges, board.Edge{"goal", "r0"})
	def.ForbiddenBarricadeNodes = []string{"goal"}

	for i, c := range engine.Colors {
		color := c.String()
		startID := "start_" + color
		def.Nodes = append(def.Nodes, board.Node{
			ID: startID, Kind: board.KindBoard, Flags: board.Flags{StartColor: color},
		})
		// Starts sit spread around the ring, away from the goal spur.
		def.Edges = append(def.Edges, board.Edge{startID, fmt.Sprintf("r%d", (i*3+2)%ringSize)})
		def.StartNodes[color] = startID

		for slot := 1; slot <= engine.PiecesPerColor; slot++ {
			def.Nodes = append(def.Nodes, board.Node{
				ID:    fmt.Sprintf("h_%s_%d", color, slot),
				Kind:  board.KindHouse,
				Flags: board.Flags{HouseColor: color, HouseSlot: slot},
			})
		}
	}

	return def
}
