// canary
// (C) 2024, Deutsche Telekom IT GmbH
//
// Deutsche Telekom IT GmbH and all other contributors /
// copyright owners license this file to you under the Apache
// License, Version 2.0 (the "License"); you may not use this
// file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package certificate

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"strconv"
)

// Fetcher retrieves the certificate chain a peer presents.
type Fetcher interface {
	Fetch(ctx context.Context, hostname string, port int) ([]*x509.Certificate, error)
}

// NewFetcher creates the production fetcher performing a raw TLS
// client handshake.
func NewFetcher() Fetcher {
	return &tlsFetcher{}
}

type tlsFetcher struct{}

// Fetch dials hostname:port and returns the presented chain, leaf
// first. The context bounds both the connect and the handshake.
func (f *tlsFetcher) Fetch(ctx context.Context, hostname string, port int) ([]*x509.Certificate, error) {
	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{},
		Config: &tls.Config{
			ServerName:         hostname,
			InsecureSkipVerify: true, //nolint:gosec // the probe inspects the certificate, it does not authenticate the peer
		},
	}

	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(hostname, strconv.Itoa(port)))
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	tlsConn, ok := conn.(*tls.Conn)
	if !ok {
		return nil, fmt.Errorf("unexpected connection type %T", conn)
	}
	return tlsConn.ConnectionState().PeerCertificates, nil
}
