// Package contactcheck checks that the domain of a contact email can receive
// mail, by looking up its MX records (or an A record as implicit MX).
package contactcheck

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sort"
	"strings"
	"time"

	"github.com/miekg/dns"
	"golang.org/x/sync/errgroup"
)

// Status values reported per address.
const (
	StatusOK        = "ok"
	StatusImplicit  = "implicit_mx"
	StatusNoMail    = "no_mail"
	StatusNoDomain  = "no_domain"
	StatusMalformed = "malformed"
	StatusUnchecked = "unchecked"
)

// DefaultConcurrency is how many lookups CheckAll runs at once.
const DefaultConcurrency = 8

type Result struct {
	Email  string
	Domain string
	Status string
	Hosts  []string
}

func (r Result) Deliverable() bool {
	return r.Status == StatusOK || r.Status == StatusImplicit
}

// Resolver queries one DNS server directly.
type Resolver struct {
	client *dns.Client
	server string
	limit  int
}

// NewResolver uses server (host:port). An empty server falls back to the
// first nameserver in /etc/resolv.conf.
func NewResolver(server string, timeout time.Duration) (*Resolver, error) {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	server = strings.TrimSpace(server)
	if server == "" {
		cfg, err := dns.ClientConfigFromFile("/etc/resolv.conf")
		if err != nil {
			return nil, fmt.Errorf("read resolv.conf: %w", err)
		}
		if len(cfg.Servers) == 0 {
			return nil, errors.New("no nameservers configured")
		}
		server = net.JoinHostPort(cfg.Servers[0], cfg.Port)
	} else if _, _, err := net.SplitHostPort(server); err != nil {
		server = net.JoinHostPort(server, "53")
	}
	return &Resolver{
		client: &dns.Client{Net: "udp", Timeout: timeout},
		server: server,
		limit:  DefaultConcurrency,
	}, nil
}

// Check looks up one address.
func (r *Resolver) Check(ctx context.Context, email string) (Result, error) {
	res := Result{Email: strings.TrimSpace(email)}
	_, domain, ok := strings.Cut(res.Email, "@")
	domain = strings.ToLower(strings.TrimSuffix(domain, "."))
	if !ok || domain == "" || strings.ContainsAny(domain, " @") {
		res.Status = StatusMalformed
		return res, nil
	}
	res.Domain = domain

	mx, rcode, err := r.query(ctx, domain, dns.TypeMX)
	if err != nil {
		return res, err
	}
	if rcode == dns.RcodeNameError {
		res.Status = StatusNoDomain
		return res, nil
	}

	hosts := make([]string, 0, len(mx))
	seen := make(map[string]struct{}, len(mx))
	sort.SliceStable(mx, func(i, j int) bool {
		a, _ := mx[i].(*dns.MX)
		b, _ := mx[j].(*dns.MX)
		if a == nil || b == nil {
			return a != nil
		}
		return a.Preference < b.Preference
	})
	for _, rr := range mx {
		m, ok := rr.(*dns.MX)
		if !ok {
			continue
		}
		host := strings.ToLower(strings.TrimSuffix(m.Mx, "."))
		if host == "" {
			// RFC 7505 null MX: the domain accepts no mail.
			res.Status = StatusNoMail
			return res, nil
		}
		if _, dup := seen[host]; dup {
			continue
		}
		seen[host] = struct{}{}
		hosts = append(hosts, host)
	}
	if len(hosts) > 0 {
		res.Status = StatusOK
		res.Hosts = hosts
		return res, nil
	}

	a, _, err := r.query(ctx, domain, dns.TypeA)
	if err != nil {
		return res, err
	}
	for _, rr := range a {
		if _, ok := rr.(*dns.A); ok {
			res.Status = StatusImplicit
			res.Hosts = []string{domain}
			return res, nil
		}
	}
	res.Status = StatusNoMail
	return res, nil
}

// CheckAll checks the addresses concurrently, at most DefaultConcurrency at
// a time. Results are in input order. The first transport error cancels the
// remaining lookups, which stay StatusUnchecked.
func (r *Resolver) CheckAll(ctx context.Context, emails []string) ([]Result, error) {
	out := make([]Result, len(emails))
	for i, e := range emails {
		out[i] = Result{Email: strings.TrimSpace(e), Status: StatusUnchecked}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(r.limit, 1))
	for i, e := range emails {
		g.Go(func() error {
			res, err := r.Check(gctx, e)
			if err != nil {
				return fmt.Errorf("check %s: %w", e, err)
			}
			out[i] = res
			return nil
		})
	}
	return out, g.Wait()
}

func (r *Resolver) query(ctx context.Context, domain string, qtype uint16) ([]dns.RR, int, error) {
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(domain), qtype)
	m.RecursionDesired = true

	in, _, err := r.client.ExchangeContext(ctx, m, r.server)
	if err != nil {
		return nil, 0, err
	}
	if in.Rcode != dns.RcodeSuccess && in.Rcode != dns.RcodeNameError {
		return nil, in.Rcode, fmt.Errorf("dns %s %s: %s", dns.TypeToString[qtype], domain, dns.RcodeToString[in.Rcode])
	}
	return in.Answer, in.Rcode, nil
}
