package server

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"
)

// certCheckSchedule is how often Run has the listener's key pair re-read.
const certCheckSchedule = "@every 1m"

// CertLoader holds the listener's TLS key pair. Check re-reads the pair when
// either file's modification time has moved, so a renewed certificate is
// served without restarting the board. The handshake path never touches the
// filesystem.
type CertLoader struct {
	certFile string
	keyFile  string
	logger   *slog.Logger

	mu      sync.RWMutex
	cert    *tls.Certificate
	certMod time.Time
	keyMod  time.Time
}

// NewCertLoader loads the key pair, failing if it cannot be read.
func NewCertLoader(certFile, keyFile string, logger *slog.Logger) (*CertLoader, error) {
	l := &CertLoader{
		certFile: certFile,
		keyFile:  keyFile,
		logger:   logger.With("cert", certFile),
	}
	certMod, keyMod, err := l.modTimes()
	if err != nil {
		return nil, err
	}
	if err := l.load(certMod, keyMod); err != nil {
		return nil, err
	}
	return l, nil
}

// GetCertificate is a callback for tls.Config.GetCertificate.
func (l *CertLoader) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cert, nil
}

// Check reloads the key pair if either file changed since the last load. On
// failure the current certificate stays in place and the error is returned.
// It has the cron.Job signature.
func (l *CertLoader) Check(ctx context.Context) error {
	certMod, keyMod, err := l.modTimes()
	if err != nil {
		return err
	}

	l.mu.RLock()
	unchanged := certMod.Equal(l.certMod) && keyMod.Equal(l.keyMod)
	l.mu.RUnlock()
	if unchanged {
		return nil
	}
	return l.load(certMod, keyMod)
}

func (l *CertLoader) modTimes() (certMod, keyMod time.Time, err error) {
	certStat, err := os.Stat(l.certFile)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("stat tls cert: %w", err)
	}
	keyStat, err := os.Stat(l.keyFile)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("stat tls key: %w", err)
	}
	return certStat.ModTime(), keyStat.ModTime(), nil
}

func (l *CertLoader) load(certMod, keyMod time.Time) error {
	cert, err := tls.LoadX509KeyPair(l.certFile, l.keyFile)
	if err != nil {
		return fmt.Errorf("loading tls key pair: %w", err)
	}

	attrs := []any{"key", l.keyFile}
	if leaf, err := x509.ParseCertificate(cert.Certificate[0]); err == nil {
		attrs = append(attrs, "subject", leaf.Subject.CommonName, "not_after", leaf.NotAfter)
	}

	l.mu.Lock()
	l.cert = &cert
	l.certMod = certMod
	l.keyMod = keyMod
	l.mu.Unlock()

	l.logger.Info("loaded tls certificate", attrs...)
	return nil
}
