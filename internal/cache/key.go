package cache

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Key addresses one cached view. Keys are hierarchical strings so that whole
// groups of views ("every task list under season 5") can be invalidated by
// prefix without enumerating filter combinations.
type Key string

func (k Key) HasPrefix(prefix Key) bool {
	return strings.HasPrefix(string(k), string(prefix))
}

// Filters is the query scope of a list view. Two logically identical filter
// sets produce the same key regardless of insertion order.
type Filters map[string]string

func (f Filters) canonical() string {
	if len(f) == 0 {
		return ""
	}
	keys := make([]string, 0, len(f))
	for k, v := range f {
		if v == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	// Escaped so a free-text value containing '&' or '=' can never alias a
	// structurally different filter set onto the same key.
	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(f[k]))
	}
	return b.String()
}

// DetailKey addresses the single-entity view for one id.
func DetailKey(entity string, id int) Key {
	return Key(entity + "/detail/" + strconv.Itoa(id))
}

// ParentListKey addresses a list view scoped to one parent entity, e.g. all
// tasks of season 5 under a given filter set.
func ParentListKey(entity, parent string, parentID int, f Filters) Key {
	return ParentListPrefix(entity, parent, parentID) + Key("?"+f.canonical())
}

// WorkspaceListKey addresses a list view spanning the whole workspace.
func WorkspaceListKey(entity string, f Filters) Key {
	return WorkspaceListPrefix(entity) + Key("?"+f.canonical())
}

// ParentListPrefix matches every list view of entity scoped to parentID,
// whatever its filters. The trailing slash keeps parent 5 from matching
// parent 55.
func ParentListPrefix(entity, parent string, parentID int) Key {
	return Key(entity + "/list/" + parent + "/" + strconv.Itoa(parentID) + "/")
}

// WorkspaceListPrefix matches every workspace-wide list view of entity.
func WorkspaceListPrefix(entity string) Key {
	return Key(entity + "/list/workspace/")
}

// ListPrefix matches every list view of entity in any scope.
func ListPrefix(entity string) Key {
	return Key(entity + "/list/")
}
