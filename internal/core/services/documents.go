package services

import (
	"fmt"
	"slices"
	"sort"

	"github.com/goccy/go-json"
	"github.com/hashicorp/go-multierror"

	"github.com/custodia-labs/restgate/internal/core/domain"
)

// Keys a nested auth app entry may carry besides the auth app keys.
// service_id and auth_vendor_name are read back from Get and ignored.
var authAppChildKeys = []string{"id", "delete", "service_id", "auth_vendor_name"}

// docParser collects every problem of a value document before failing.
type docParser struct {
	doc    map[string]any
	prefix string
	errs   *multierror.Error
}

func newDocParser(doc map[string]any, prefix string) *docParser {
	return &docParser{doc: doc, prefix: prefix}
}

func (p *docParser) name(key string) string {
	return p.prefix + key
}

func (p *docParser) fail(err error, key, format string, args ...any) {
	p.errs = multierror.Append(p.errs, fmt.Errorf("%w: %s: %s", err, p.name(key), fmt.Sprintf(format, args...)))
}

// checkKeys reports every key of the document outside allowed.
func (p *docParser) checkKeys(allowed ...[]string) {
	keys := make([]string, 0, len(p.doc))
	for k := range p.doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		ok := false
		for _, set := range allowed {
			if slices.Contains(set, k) {
				ok = true
				break
			}
		}
		if !ok {
			p.errs = multierror.Append(p.errs, fmt.Errorf("%w: %s", domain.ErrInvalidField, p.name(k)))
		}
	}
}

func (p *docParser) str(key string) *string {
	v, ok := p.doc[key]
	if !ok {
		return nil
	}
	switch s := v.(type) {
	case string:
		return &s
	case nil:
		empty := ""
		return &empty
	default:
		p.fail(domain.ErrValidation, key, "expected a string, got %T", v)
		return nil
	}
}

func (p *docParser) path(key, field string) *string {
	s := p.str(key)
	if s != nil {
		if err := domain.ValidatePath(field, *s); err != nil {
			p.errs = multierror.Append(p.errs, err)
			return nil
		}
	}
	return s
}

func (p *docParser) boolean(key string) *bool {
	v, ok := p.doc[key]
	if !ok {
		return nil
	}
	switch b := v.(type) {
	case bool:
		return &b
	case float64:
		// GUI clients send 0/1 for checkboxes.
		if b == 0 || b == 1 {
			r := b == 1
			return &r
		}
	}
	p.fail(domain.ErrValidation, key, "expected a boolean, got %v", v)
	return nil
}

func (p *docParser) object(key string) *map[string]any {
	v, ok := p.doc[key]
	if !ok {
		return nil
	}
	switch m := v.(type) {
	case map[string]any:
		return &m
	case nil:
		empty := map[string]any{}
		return &empty
	default:
		p.fail(domain.ErrValidation, key, "expected an object, got %T", v)
		return nil
	}
}

func (p *docParser) id(key string) *domain.ID {
	s := p.str(key)
	if s == nil {
		return nil
	}
	id, err := domain.ParseID(*s)
	if err != nil {
		p.fail(domain.ErrValidation, key, "%v", err)
		return nil
	}
	return &id
}

// optionalID parses a nullable identity: null clears the value.
func (p *docParser) optionalID(key string) **domain.ID {
	v, ok := p.doc[key]
	if !ok {
		return nil
	}
	if v == nil {
		var cleared *domain.ID
		return &cleared
	}
	id := p.id(key)
	if id == nil {
		return nil
	}
	return &id
}

func (p *docParser) protocols(key string) *domain.ProtocolSet {
	v, ok := p.doc[key]
	if !ok {
		return nil
	}
	var (
		set domain.ProtocolSet
		err error
	)
	switch x := v.(type) {
	case string:
		set, err = domain.ParseProtocols(x)
	case []any:
		names := make([]string, 0, len(x))
		for _, n := range x {
			s, ok := n.(string)
			if !ok {
				p.fail(domain.ErrValidation, key, "expected protocol names, got %T", n)
				return nil
			}
			names = append(names, s)
		}
		set, err = domain.NewProtocolSet(names...)
	case []string:
		set, err = domain.NewProtocolSet(x...)
	default:
		p.fail(domain.ErrValidation, key, "expected a string or list, got %T", v)
		return nil
	}
	if err != nil {
		p.fail(domain.ErrValidation, key, "%v", err)
		return nil
	}
	return &set
}

func (p *docParser) childRef(key string) domain.ChildRef {
	v, ok := p.doc[key]
	if !ok {
		return domain.NewChild()
	}
	raw, err := json.Marshal(v)
	if err != nil {
		p.fail(domain.ErrValidation, key, "%v", err)
		return domain.NewChild()
	}
	var ref domain.ChildRef
	if err := json.Unmarshal(raw, &ref); err != nil {
		p.fail(domain.ErrValidation, key, "%v", err)
		return domain.NewChild()
	}
	return ref
}

func (p *docParser) err() error {
	return p.errs.ErrorOrNil()
}

// ParseServiceUpdate turns a service value document into a typed update.
// Unknown keys fail with domain.ErrInvalidField, malformed values with
// domain.ErrValidation. All problems are reported together.
func ParseServiceUpdate(doc map[string]any) (domain.ServiceUpdate, error) {
	p := newDocParser(doc, "")
	p.checkKeys(domain.ServiceUpdateKeys)

	u := domain.ServiceUpdate{
		HostName:                   p.str("url_host_name"),
		ContextRoot:                p.path("url_context_root", "url_context_root"),
		Protocols:                  p.protocols("url_protocol"),
		Enabled:                    p.boolean("enabled"),
		Comments:                   p.str("comments"),
		Options:                    p.object("options"),
		AuthPath:                   p.path("auth_path", "auth_path"),
		AuthCompletedURL:           p.str("auth_completed_url"),
		AuthCompletedURLValidation: p.str("auth_completed_url_validation"),
		AuthCompletedPageContent:   p.str("auth_completed_page_content"),
	}

	if raw, ok := doc["auth_apps"]; ok && raw != nil {
		items, ok := raw.([]any)
		if !ok {
			p.fail(domain.ErrValidation, "auth_apps", "expected a list, got %T", raw)
		}
		for i, item := range items {
			child, ok := item.(map[string]any)
			if !ok {
				p.fail(domain.ErrValidation, fmt.Sprintf("auth_apps[%d]", i), "expected an object, got %T", item)
				continue
			}
			cp := newDocParser(child, fmt.Sprintf("auth_apps[%d].", i))
			cp.checkKeys(domain.AuthAppUpdateKeys, authAppChildKeys)
			change := domain.AuthAppChange{
				Ref:    cp.childRef("id"),
				Values: cp.authAppValues(),
			}
			if del := cp.boolean("delete"); del != nil {
				change.Delete = *del
			}
			if change.Delete && change.Ref.IsNew() {
				cp.fail(domain.ErrValidation, "delete", "cannot delete an auth app that does not exist")
			}
			if err := cp.err(); err != nil {
				p.errs = multierror.Append(p.errs, err)
			}
			u.AuthApps = append(u.AuthApps, change)
		}
	}

	if err := p.err(); err != nil {
		return domain.ServiceUpdate{}, err
	}
	return u, nil
}

func (p *docParser) authAppValues() domain.AuthAppValues {
	return domain.AuthAppValues{
		AuthVendorID:            p.id("auth_vendor_id"),
		Name:                    p.str("name"),
		Description:             p.str("description"),
		URL:                     p.str("url"),
		URLDirectAuth:           p.str("url_direct_auth"),
		AccessToken:             p.str("access_token"),
		AppID:                   p.str("app_id"),
		Enabled:                 p.boolean("enabled"),
		UseBuiltInAuthorization: p.boolean("use_built_in_authorization"),
		LimitToRegisteredUsers:  p.boolean("limit_to_registered_users"),
		DefaultRoleID:           p.optionalID("default_role_id"),
	}
}

// ParseAuthAppUpdate turns an auth app value document into partial values.
func ParseAuthAppUpdate(doc map[string]any) (domain.AuthAppValues, error) {
	p := newDocParser(doc, "")
	p.checkKeys(domain.AuthAppUpdateKeys)
	values := p.authAppValues()
	if err := p.err(); err != nil {
		return domain.AuthAppValues{}, err
	}
	return values, nil
}

// ParseContentSetUpdate turns a content set value document into partial
// values.
func ParseContentSetUpdate(doc map[string]any) (domain.ContentSetValues, error) {
	p := newDocParser(doc, "")
	p.checkKeys(domain.ContentSetUpdateKeys)
	values := domain.ContentSetValues{
		RequestPath:  p.path("request_path", "request_path"),
		RequiresAuth: p.boolean("requires_auth"),
		Enabled:      p.boolean("enabled"),
		Comments:     p.str("comments"),
		Options:      p.object("options"),
	}
	if err := p.err(); err != nil {
		return domain.ContentSetValues{}, err
	}
	return values, nil
}

// DecodeDocument parses JSON text into a value document.
func DecodeDocument(data []byte) (map[string]any, error) {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: expected a JSON object", domain.ErrValidation)
	}
	return doc, nil
}
