// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package identity

import (
	"context"
	"encoding/json"
	"os"
	"reflect"
	"sync"

	"github.com/Masterminds/semver/v3"
	"github.com/invopop/jsonschema"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

// DirectoryVersion is the document version written by Marshal.
const DirectoryVersion = "1.0.0"

// supportedDirectoryVersions is the range of document versions ParseDirectory accepts.
const supportedDirectoryVersions = "^1"

// Directory is the serialized form of a complete identity store.
type Directory struct {
	Version    string       `json:"version" yaml:"version" jsonschema:"minLength=1"`
	Roles      []*Role      `json:"roles,omitempty" yaml:"roles,omitempty"`
	Users      []*User      `json:"users,omitempty" yaml:"users,omitempty"`
	UserGroups []*UserGroup `json:"user_groups,omitempty" yaml:"user_groups,omitempty"`
}

var (
	compiledSchema     *jschema.Schema
	compiledSchemaErr  error
	compiledSchemaOnce sync.Once
)

// SchemaID returns the $id of the directory JSON Schema.
func SchemaID() string {
	return "https://holomush.dev/schemas/warden-directory.schema.json"
}

// GenerateSchema generates the JSON Schema for directory documents.
func GenerateSchema() ([]byte, error) {
	groupType := reflect.TypeOf(UserGroup{})
	inner := jsonschema.Reflector{DoNotReference: true, Anonymous: true}
	groupSchema := inner.Reflect(&groupDocument{})
	groupSchema.Version = ""

	r := jsonschema.Reflector{
		DoNotReference: true,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t == groupType {
				return groupSchema
			}
			return nil
		},
	}
	schema := r.Reflect(&Directory{})
	schema.ID = jsonschema.ID(SchemaID())
	schema.Title = "Warden Directory"
	schema.Description = "Users, roles and user groups loaded into the identity store"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, oops.Code("DIRECTORY_SCHEMA_FAILED").Wrap(err)
	}
	return data, nil
}

func directorySchema() (*jschema.Schema, error) {
	compiledSchemaOnce.Do(func() {
		data, err := GenerateSchema()
		if err != nil {
			compiledSchemaErr = err
			return
		}
		var doc any
		if err := json.Unmarshal(data, &doc); err != nil {
			compiledSchemaErr = oops.Code("DIRECTORY_SCHEMA_FAILED").Wrap(err)
			return
		}
		c := jschema.NewCompiler()
		if err := c.AddResource("directory.json", doc); err != nil {
			compiledSchemaErr = oops.Code("DIRECTORY_SCHEMA_FAILED").Wrap(err)
			return
		}
		compiledSchema, compiledSchemaErr = c.Compile("directory.json")
		if compiledSchemaErr != nil {
			compiledSchemaErr = oops.Code("DIRECTORY_SCHEMA_FAILED").Wrap(compiledSchemaErr)
		}
	})
	return compiledSchema, compiledSchemaErr
}

// ValidateSchema validates a YAML or JSON document against the directory schema.
func ValidateSchema(data []byte) error {
	if len(data) == 0 {
		return oops.Code("DIRECTORY_EMPTY").Errorf("directory document is empty")
	}
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return oops.Code("DIRECTORY_INVALID_YAML").Wrap(err)
	}
	sch, err := directorySchema()
	if err != nil {
		return err
	}
	if err := sch.Validate(jsonCompatible(raw)); err != nil {
		return oops.Code("DIRECTORY_SCHEMA_VIOLATION").Wrap(err)
	}
	return nil
}

// jsonCompatible converts yaml.v3 output into values the schema validator accepts.
func jsonCompatible(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = jsonCompatible(e)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = jsonCompatible(e)
		}
		return out
	case string, int, int64, float64, bool, nil:
		return val
	default:
		if b, err := json.Marshal(val); err == nil {
			var out any
			if err := json.Unmarshal(b, &out); err == nil {
				return out
			}
		}
		return val
	}
}

// ParseDirectory parses and validates a YAML or JSON directory document.
// JSON is accepted because it is a subset of YAML.
func ParseDirectory(data []byte) (*Directory, error) {
	if err := ValidateSchema(data); err != nil {
		return nil, err
	}
	var d Directory
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, oops.Code("DIRECTORY_INVALID_YAML").Wrap(err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// LoadDirectoryFile reads and parses a directory document from disk.
func LoadDirectoryFile(path string) (*Directory, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from operator configuration
	if err != nil {
		return nil, oops.Code("DIRECTORY_READ_FAILED").With("path", path).Wrap(err)
	}
	d, err := ParseDirectory(data)
	if err != nil {
		return nil, oops.With("path", path).Wrap(err)
	}
	return d, nil
}

// Validate checks the version, every entity, ID uniqueness and that user
// groups only reference known users and roles.
func (d *Directory) Validate() error {
	v, err := semver.NewVersion(d.Version)
	if err != nil {
		return oops.Code("DIRECTORY_INVALID_VERSION").With("version", d.Version).Wrap(err)
	}
	supported, err := semver.NewConstraint(supportedDirectoryVersions)
	if err != nil {
		return oops.Code("DIRECTORY_INVALID_VERSION").Wrap(err)
	}
	if !supported.Check(v) {
		return oops.Code("DIRECTORY_UNSUPPORTED_VERSION").
			With("version", d.Version).
			With("supported", supportedDirectoryVersions).
			Errorf("unsupported directory version %s", d.Version)
	}

	roles := make(map[string]struct{}, len(d.Roles))
	for i, r := range d.Roles {
		if r == nil {
			return oops.Code("DIRECTORY_INVALID_ENTRY").With("roles_index", i).Errorf("role entry is empty")
		}
		if err := r.Validate(); err != nil {
			return oops.With("roles_index", i).Wrap(err)
		}
		if _, dup := roles[r.ID]; dup {
			return duplicate("role", r.ID)
		}
		roles[r.ID] = struct{}{}
	}

	users := make(map[string]struct{}, len(d.Users))
	logins := make(map[string]struct{}, len(d.Users))
	for i, u := range d.Users {
		if u == nil {
			return oops.Code("DIRECTORY_INVALID_ENTRY").With("users_index", i).Errorf("user entry is empty")
		}
		if err := u.Validate(); err != nil {
			return oops.With("users_index", i).Wrap(err)
		}
		if _, dup := users[u.ID]; dup {
			return duplicate("user", u.ID)
		}
		users[u.ID] = struct{}{}
		if _, dup := logins[loginKey(u.Login)]; dup {
			return oops.Code("IDENTITY_DUPLICATE").With("login", u.Login).Errorf("duplicate login %q", u.Login)
		}
		logins[loginKey(u.Login)] = struct{}{}
	}

	groups := make(map[string]struct{}, len(d.UserGroups))
	for i, g := range d.UserGroups {
		if g == nil {
			return oops.Code("DIRECTORY_INVALID_ENTRY").With("user_groups_index", i).Errorf("user group entry is empty")
		}
		if err := g.Validate(); err != nil {
			return oops.With("user_groups_index", i).Wrap(err)
		}
		if _, dup := groups[g.ID]; dup {
			return duplicate("user group", g.ID)
		}
		groups[g.ID] = struct{}{}
		for _, id := range g.UserIDs() {
			if _, ok := users[id]; !ok {
				return danglingReference(g.ID, "user", id)
			}
		}
		for _, id := range g.RoleIDs() {
			if _, ok := roles[id]; !ok {
				return danglingReference(g.ID, "role", id)
			}
		}
	}
	return nil
}

func duplicate(kind, id string) error {
	return oops.Code("IDENTITY_DUPLICATE").With("kind", kind).With("id", id).Errorf("duplicate %s ID %q", kind, id)
}

func danglingReference(groupID, kind, id string) error {
	return oops.Code("DIRECTORY_UNKNOWN_REFERENCE").
		With("user_group_id", groupID).
		With("kind", kind).
		With("id", id).
		Errorf("user group %q references unknown %s %q", groupID, kind, id)
}

// Marshal encodes the directory as YAML.
func (d *Directory) Marshal() ([]byte, error) {
	out, err := yaml.Marshal(d)
	if err != nil {
		return nil, oops.Code("DIRECTORY_ENCODE_FAILED").Wrap(err)
	}
	return out, nil
}

// DirectoryOf snapshots every entity of a store into a Directory.
func DirectoryOf(ctx context.Context, s Store) (*Directory, error) {
	users, err := s.Users(ctx)
	if err != nil {
		return nil, oops.Code("DIRECTORY_SNAPSHOT_FAILED").Wrap(err)
	}
	roles, err := s.Roles(ctx)
	if err != nil {
		return nil, oops.Code("DIRECTORY_SNAPSHOT_FAILED").Wrap(err)
	}
	groups, err := s.UserGroups(ctx)
	if err != nil {
		return nil, oops.Code("DIRECTORY_SNAPSHOT_FAILED").Wrap(err)
	}
	return &Directory{Version: DirectoryVersion, Roles: roles, Users: users, UserGroups: groups}, nil
}
