// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package collation

//go:generate mockgen -destination=mocks_test.go -package=$GOPACKAGE . Submitter,BlockImporter,CollationVerifier
//go:generate mockgen -destination=mock_authorizer_test.go -package $GOPACKAGE github.com/ChainSafe/collator/lib/aura Authorizer
//go:generate mockgen -destination=mock_engine_test.go -package $GOPACKAGE github.com/ChainSafe/collator/lib/runtime Engine
