package bigip

import (
	"context"
	"errors"
	"regexp"
	"sort"
	"strings"

	"github.com/smnsjas/go-icontrol/soap/transport"
)

// wsdlLinkRE extracts namespace names from the WSDL links on the portal's
// index page. The index is the only place the appliance enumerates what
// it speaks; there is no listing method in the API itself.
var wsdlLinkRE = regexp.MustCompile(`/iControl/iControlPortal\.cgi\?WSDL=([^"']+)["']`)

// Namespaces discovers every namespace the appliance publishes, grouped
// as module name to sorted interface names ("LocalLB" to ["Pool",
// "PoolMember", ...]). The portal index is fetched once and the grouping
// cached for the client's lifetime; discovery also primes each module's
// Namespace node so Interfaces works without another fetch.
func (c *Client) Namespaces(ctx context.Context) (map[string][]string, error) {
	if c.hierarchy == nil {
		if err := c.discover(ctx); err != nil {
			return nil, err
		}
	}
	out := make(map[string][]string, len(c.hierarchy))
	for module, ifaces := range c.hierarchy {
		cp := make([]string, len(ifaces))
		copy(cp, ifaces)
		out[module] = cp
	}
	return out, nil
}

// Modules returns the sorted module names the appliance publishes.
func (c *Client) Modules(ctx context.Context) ([]string, error) {
	hier, err := c.Namespaces(ctx)
	if err != nil {
		return nil, err
	}
	modules := make([]string, 0, len(hier))
	for m := range hier {
		modules = append(modules, m)
	}
	sort.Strings(modules)
	return modules, nil
}

func (c *Client) discover(ctx context.Context) error {
	data, err := c.portal.Get(ctx, c.endpoint)
	if err != nil {
		if errors.Is(err, transport.ErrUnauthorized) {
			return opError(KindConnection, "", "",
				"authentication failed, likely invalid credentials", err)
		}
		return opError(KindConnection, "", "", "failed to fetch the portal index", err)
	}

	hier := make(map[string][]string)
	seen := make(map[string]bool)
	for _, m := range wsdlLinkRE.FindAllStringSubmatch(string(data), -1) {
		full := m[1]
		if seen[full] {
			continue
		}
		seen[full] = true
		module, iface, ok := strings.Cut(full, ".")
		if !ok {
			if _, exists := hier[module]; !exists {
				hier[module] = nil
			}
			continue
		}
		hier[module] = append(hier[module], iface)
	}
	if len(hier) == 0 {
		return opError(KindParse, "", "",
			"no iControl namespaces found in the portal index; is this a BIG-IP management address?", nil)
	}

	for module, ifaces := range hier {
		sort.Strings(ifaces)
		c.Namespace(module).interfaces = ifaces
	}
	c.hierarchy = hier

	c.logger.Debug("discovered iControl namespaces",
		"modules", len(hier),
		"namespaces", len(seen))
	return nil
}
