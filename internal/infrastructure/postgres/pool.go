package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/Agenda-api/pkg/config"
)

// errNoIPv4 el host no tiene dirección IPv4 resoluble.
var errNoIPv4 = errors.New("postgres: host sin IPv4")

// lookupIPv4 resuelve un host a direcciones IPv4.
type lookupIPv4 func(ctx context.Context, host string) ([]net.IP, error)

// NewPool crea el pool de conexiones y verifica que la base responda dentro de QueryTimeout.
func NewPool(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error) {
	poolConfig, err := buildPoolConfig(ctx, cfg, defaultLookups())
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("crear pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, cfg.QueryTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping DB: %w", err)
	}
	return pool, nil
}

// NewStore arma el ejecutor con reintentos y el runner de transacciones sobre el pool.
func NewStore(pool Beginner, cfg config.DBConfig) (*DB, *TxRunner) {
	return NewDB(pool, cfg.QueryTimeout, cfg.Retries), NewTxRunner(pool, cfg.QueryTimeout, cfg.Retries)
}

func buildPoolConfig(ctx context.Context, cfg config.DBConfig, lookups []lookupIPv4) (*pgxpool.Config, error) {
	dsn := cfg.ConnectionString()
	if cfg.ForceIPv4 {
		dsn = withIPv4Host(ctx, dsn, lookups)
	}

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse DSN: %w", err)
	}
	if cfg.ForceIPv4 {
		poolConfig.ConnConfig.DialFunc = ipv4Dialer(lookups)
	}

	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute
	poolConfig.ConnConfig.ConnectTimeout = cfg.QueryTimeout
	// Fechas de eventos en UTC; la zona de presentación la decide el cliente.
	poolConfig.ConnConfig.RuntimeParams["timezone"] = "UTC"
	return poolConfig, nil
}

// ipv4Dialer fuerza tcp4 cuando el host resuelve a IPv4; si no, hace el dial normal.
func ipv4Dialer(lookups []lookupIPv4) func(ctx context.Context, network, addr string) (net.Conn, error) {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		dialer := &net.Dialer{}
		host, port, err := net.SplitHostPort(addr)
		if err != nil {
			return nil, err
		}
		ip, err := resolveIPv4(ctx, host, lookups)
		if err != nil {
			return dialer.DialContext(ctx, network, addr)
		}
		return dialer.DialContext(ctx, "tcp4", net.JoinHostPort(ip, port))
	}
}

// defaultLookups prueba el resolver del sistema y luego un DNS público,
// porque dentro de Docker el DNS puede devolver solo AAAA.
func defaultLookups() []lookupIPv4 {
	public := &net.Resolver{
		PreferGo: true,
		Dial: func(ctx context.Context, network, address string) (net.Conn, error) {
			d := net.Dialer{}
			return d.DialContext(ctx, "udp", "8.8.8.8:53")
		},
	}
	return []lookupIPv4{
		func(ctx context.Context, host string) ([]net.IP, error) {
			return net.DefaultResolver.LookupIP(ctx, "ip4", host)
		},
		func(ctx context.Context, host string) ([]net.IP, error) {
			return public.LookupIP(ctx, "ip4", host)
		},
	}
}

func resolveIPv4(ctx context.Context, host string, lookups []lookupIPv4) (string, error) {
	if ip := net.ParseIP(host); ip != nil {
		if ip.To4() != nil {
			return host, nil
		}
		return "", errNoIPv4
	}
	for _, lookup := range lookups {
		ips, err := lookup(ctx, host)
		if err != nil {
			continue
		}
		for _, ip := range ips {
			if ip.To4() != nil {
				return ip.String(), nil
			}
		}
	}
	return "", errNoIPv4
}

// withIPv4Host reemplaza el host del DSN por su IPv4; ante cualquier fallo devuelve el DSN intacto.
func withIPv4Host(ctx context.Context, dsn string, lookups []lookupIPv4) string {
	u, err := url.Parse(dsn)
	if err != nil || u.Host == "" {
		return dsn
	}
	port := u.Port()
	if port == "" {
		port = "5432"
	}
	ip, err := resolveIPv4(ctx, u.Hostname(), lookups)
	if err != nil {
		return dsn
	}
	u.Host = net.JoinHostPort(ip, port)
	return u.String()
}
