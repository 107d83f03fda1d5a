package postgres

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/storehub-api/pkg/config"
)

// NewPool crea el pool de conexiones con el tamaño de la configuración y verifica la conexión.
// Con PreferIPv4 el host se resuelve solo a direcciones IPv4 (ver ipv4Lookup).
func NewPool(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parse DSN: %w", err)
	}
	if cfg.PreferIPv4 {
		poolConfig.ConnConfig.LookupFunc = newIPv4Lookup(cfg.FallbackDNS).lookup
	}

	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("crear pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping DB: %w", err)
	}
	return pool, nil
}

// ipv4Lookup resuelve hosts de PostgreSQL a IPv4: primero con el resolver del sistema y, si está
// configurado, con un servidor DNS alterno. Sin ninguna IPv4 deja la resolución normal.
type ipv4Lookup struct {
	resolvers []*net.Resolver
	fallback  string
}

func newIPv4Lookup(fallbackDNS string) *ipv4Lookup {
	l := &ipv4Lookup{resolvers: []*net.Resolver{net.DefaultResolver}}
	if fallbackDNS == "" {
		return l
	}
	addr := fallbackDNS
	if _, _, err := net.SplitHostPort(addr); err != nil {
		addr = net.JoinHostPort(addr, "53")
	}
	l.fallback = addr
	l.resolvers = append(l.resolvers, &net.Resolver{
		PreferGo: true,
		Dial: func(ctx context.Context, _, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, "udp", addr)
		},
	})
	return l
}

// lookup cumple pgconn.LookupFunc. Un literal IP se devuelve tal cual.
func (l *ipv4Lookup) lookup(ctx context.Context, host string) ([]string, error) {
	if ip := net.ParseIP(host); ip != nil {
		return []string{host}, nil
	}
	for _, r := range l.resolvers {
		ips, err := r.LookupIP(ctx, "ip4", host)
		if err != nil || len(ips) == 0 {
			continue
		}
		addrs := make([]string, 0, len(ips))
		for _, ip := range ips {
			addrs = append(addrs, ip.String())
		}
		return addrs, nil
	}
	return net.DefaultResolver.LookupHost(ctx, host)
}
