package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/bnema/taskmate/internal/domain"
	"github.com/bnema/taskmate/internal/ports"
)

const (
	RosterPathKey    = "roster.path"
	RosterMembersKey = "roster.members"

	teamFileMode    = 0o600
	teamDirMode     = 0o700
	teamConfigDir   = ".taskmate"
	teamConfigFile  = "team.toml"
	tempFilePattern = ".team-*.toml.tmp"
)

// DefaultMembers seed the roster until a team file is written.
var DefaultMembers = []string{"Ravi", "Ankita", "Sam", "Alex", "Maya", "Jordan", "Taylor"}

// Repository stores the team roster in a TOML file. Until the file exists the
// configured default members are served.
type Repository struct {
	teamPath string
	defaults domain.Roster
	clock    ports.Clock
	mu       *sync.RWMutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.RosterRepository = (*Repository)(nil)

func NewRepository(cfg *viper.Viper, clock ports.Clock) (*Repository, error) {
	if cfg == nil {
		cfg = viper.New()
	}
	if clock == nil {
		clock = ports.SystemClock{}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}
	cfg.SetDefault(RosterPathKey, filepath.Join(homeDir, teamConfigDir, teamConfigFile))
	cfg.SetDefault(RosterMembersKey, DefaultMembers)

	teamPath := cfg.GetString(RosterPathKey)
	if teamPath == "" {
		return nil, errors.New("team roster path is empty")
	}
	teamPath, err = normalizeTeamPath(teamPath)
	if err != nil {
		return nil, err
	}

	return &Repository{
		teamPath: teamPath,
		defaults: domain.NewRoster(cfg.GetStringSlice(RosterMembersKey)...),
		clock:    clock,
		mu:       lockForPath(teamPath),
	}, nil
}

func (r *Repository) Path() string {
	return r.teamPath
}

func (r *Repository) CurrentRoster(ctx context.Context) (domain.Roster, error) {
	if err := ctx.Err(); err != nil {
		return domain.Roster{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, ok, err := r.readSchema()
	if err != nil {
		return domain.Roster{}, err
	}
	if !ok {
		return r.defaults, nil
	}

	names := make([]string, 0, len(file.Members))
	for _, member := range file.Members {
		names = append(names, member.Name)
	}

	return domain.NewRoster(names...), nil
}

// Save replaces the stored roster, keeping the added_at stamp of members that
// were already present.
func (r *Repository) Save(ctx context.Context, roster domain.Roster) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	previous, _, err := r.readSchema()
	if err != nil {
		return err
	}
	addedAt := make(map[string]string, len(previous.Members))
	for _, member := range previous.Members {
		addedAt[member.Name] = member.AddedAt
	}

	now := formatTime(r.clock.Now())
	file := fileSchema{Version: currentSchemaVersion, UpdatedAt: now}
	for _, name := range roster.Names() {
		stamp, ok := addedAt[name]
		if !ok || parseTime(stamp).IsZero() {
			stamp = now
		}
		file.Members = append(file.Members, memberSchema{Name: name, AddedAt: stamp})
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	return r.writeSchema(file)
}

func (r *Repository) readSchema() (fileSchema, bool, error) {
	data, err := os.ReadFile(r.teamPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileSchema{}, false, nil
		}
		return fileSchema{}, false, fmt.Errorf("read team file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return fileSchema{}, false, fmt.Errorf("decode team file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return fileSchema{}, false, err
	}
	file.applyDefaults()

	return file, true, nil
}

func normalizeTeamPath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve team path: %w", err)
	}

	return filepath.Clean(absPath), nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}

func (r *Repository) writeSchema(file fileSchema) error {
	file.applyDefaults()

	if err := os.MkdirAll(filepath.Dir(r.teamPath), teamDirMode); err != nil {
		return fmt.Errorf("create team directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode team file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(r.teamPath), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp team file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp team file: %w", err)
	}

	if err := tempFile.Chmod(teamFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp team file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp team file: %w", err)
	}

	if err := os.Rename(tempName, r.teamPath); err != nil {
		return fmt.Errorf("replace team file: %w", err)
	}

	cleanup = false

	return nil
}
