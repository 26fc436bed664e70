// Command sdjwtdemo issues, presents, and verifies a selectively disclosable
// JWT end to end, exercising every package of this module plus the
// golang-jwt-backed internal/josedemo adapter. Grounded on dc4eu-vc's own
// demo-scale mockas service, which wires the same issue -> present -> verify
// flow around sdjwtvc for local testing.
package main

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/go-sdjwt/core/internal/josedemo"
	"github.com/go-sdjwt/core/internal/xlog"
	"github.com/go-sdjwt/core/pkg/claimquery"
	"github.com/go-sdjwt/core/pkg/discloser"
	"github.com/go-sdjwt/core/pkg/element"
	"github.com/go-sdjwt/core/pkg/hashcap"
	"github.com/go-sdjwt/core/pkg/keybinding"
	"github.com/go-sdjwt/core/pkg/salt"
	"github.com/go-sdjwt/core/pkg/sdjwt"
	"github.com/go-sdjwt/core/pkg/verifier"
)

func main() {
	configPath := flag.String("config", "", "path to an optional YAML config overlay")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "sdjwtdemo:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log, err := xlog.New("sdjwtdemo")
	if err != nil {
		return fmt.Errorf("starting logger: %w", err)
	}

	ctx := context.Background()
	alg := hashcap.Algorithm(cfg.HashAlgorithm)

	issuerKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return fmt.Errorf("generating issuer key: %w", err)
	}
	holderKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return fmt.Errorf("generating holder key: %w", err)
	}

	hashes := hashcap.New(hashcap.CryptoRandom{})
	saltProvider := salt.New(hashcap.CryptoRandom{})

	elements, err := element.NewBuilder().
		Plain(map[string]any{
			"vct": cfg.CredentialType,
			"iss": cfg.Issuer.Identifier,
			"iat": time.Now().Unix(),
			"jti": uuid.NewString(),
		}).
		Flat(map[string]any{
			"given_name": "Alice",
			"family_name": "Doe",
		}).
		StructuredWithFlatClaims("address", map[string]any{
			"street_address": "Schulstr. 12",
			"locality":       "Musterstadt",
			"country":        "DE",
		}).
		Array("nationalities",
			element.ArrayPlain("DE"),
			element.ArrayDisclosed("US"),
		).
		Build()
	if err != nil {
		return fmt.Errorf("building disclosure tree: %w", err)
	}

	issuance, err := sdjwt.Issue(ctx, elements, sdjwt.IssueOptions{
		Options: discloser.Options{
			HashAlg:   alg,
			Hashes:    hashes,
			Salts:     saltProvider,
			NumDecoys: cfg.DecoyDigests,
		},
		Header: map[string]any{},
	}, &josedemo.IssuerSigner{PrivateKey: issuerKey, KeyID: "issuer-1"})
	if err != nil {
		return fmt.Errorf("issuing: %w", err)
	}
	log.Info("issued", "disclosures", len(issuance.Disclosures))

	query, err := claimquery.ParsePaths("given_name", "address.locality")
	if err != nil {
		return fmt.Errorf("parsing presentation query: %w", err)
	}

	pres, err := sdjwt.Present(*issuance, hashes, query)
	if err != nil {
		return fmt.Errorf("presenting: %w", err)
	}

	if err := pres.AddKeyBinding(ctx, &josedemo.KeyBindingSigner{PrivateKey: holderKey, KeyID: "holder-1"}, hashes, alg, keybinding.Params{
		Audience: cfg.Verifier.Audience,
		Nonce:    uuid.NewString(),
		IssuedAt: time.Now().Unix(),
	}); err != nil {
		return fmt.Errorf("adding key binding: %w", err)
	}
	log.Info("presented", "disclosures", len(pres.Disclosures))

	result, err := verifier.Verify(ctx, pres.Combined(),
		&josedemo.Verifier{PublicKey: &issuerKey.PublicKey},
		&josedemo.Verifier{PublicKey: &holderKey.PublicKey},
		verifier.Options{
			Hashes:            hashes,
			RequireKeyBinding: true,
			ExpectedAudience:  cfg.Verifier.Audience,
			Log:               log,
		},
	)
	if err != nil {
		return fmt.Errorf("verifying: %w", err)
	}

	fmt.Printf("verified claims: %+v\n", result.Claims)
	return nil
}
