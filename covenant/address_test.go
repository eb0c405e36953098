package covenant

import (
	"strings"
	"testing"
)

func TestAddressUsesExpectedHRP(t *testing.T) {
	locked, claim, key := testLocked(), testClaim(), testControlKey()
	desc, err := DepositDescriptor(key, 1735689600, locked, claim)
	if err != nil {
		t.Fatalf("DepositDescriptor: %v", err)
	}

	regtestAddr, err := NetworkRegtest.Address(desc)
	if err != nil {
		t.Fatalf("Address(regtest): %v", err)
	}
	if !strings.HasPrefix(regtestAddr, "ert1") {
		t.Fatalf("regtest address should have the ert1 prefix, got %s", regtestAddr)
	}

	liquidAddr, err := NetworkLiquid.Address(desc)
	if err != nil {
		t.Fatalf("Address(liquid): %v", err)
	}
	if !strings.HasPrefix(liquidAddr, "ex1") {
		t.Fatalf("liquid address should have the ex1 prefix, got %s", liquidAddr)
	}
}

func TestAddressDeterministic(t *testing.T) {
	locked, claim, key := testLocked(), testClaim(), testControlKey()
	desc, err := DepositDescriptor(key, 1735689600, locked, claim)
	if err != nil {
		t.Fatalf("DepositDescriptor: %v", err)
	}

	a1, err := NetworkRegtest.Address(desc)
	if err != nil {
		t.Fatalf("Address: %v", err)
	}
	a2, err := NetworkRegtest.Address(desc)
	if err != nil {
		t.Fatalf("Address: %v", err)
	}
	if a1 != a2 {
		t.Fatalf("deposit address should be byte-identical across runs given the same config")
	}
}
