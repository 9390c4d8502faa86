// Package chains defines the chain identifiers understood by the locator
// and the execution family each one belongs to.
package chains

import (
	"fmt"
	"strconv"
)

// Network selects the deployment environment shared by every configured chain.
type Network string

const (
	NetworkMainnet Network = "mainnet"
	NetworkTestnet Network = "testnet"
)

// ParseNetwork validates a network name from config or request input.
func ParseNetwork(s string) (Network, error) {
	switch Network(s) {
	case NetworkMainnet, NetworkTestnet:
		return Network(s), nil
	default:
		return "", fmt.Errorf("unknown network %q", s)
	}
}

// Family is the execution model of a chain. It decides which scanner
// implementation can search the chain for redemptions.
type Family string

const (
	FamilyEVM    Family = "evm"
	FamilySolana Family = "solana"
)

// ID is the bridge-level chain identifier carried in transfer messages.
// The values follow the emitter-chain numbering used by the token bridge.
type ID uint16

func (id ID) String() string {
	if info, ok := Lookup(id); ok {
		return info.Name
	}
	return "chain-" + strconv.FormatUint(uint64(id), 10)
}

// Info describes a single chain known to the service.
type Info struct {
	ID     ID
	Name   string
	Family Family
}

const (
	IDSolana    ID = 1
	IDEthereum  ID = 2
	IDBSC       ID = 4
	IDPolygon   ID = 5
	IDAvalanche ID = 6
	IDFantom    ID = 10
	IDArbitrum  ID = 23
	IDOptimism  ID = 24
	IDBase      ID = 30
)

var registry = map[ID]Info{
	IDSolana:    {ID: IDSolana, Name: "solana", Family: FamilySolana},
	IDEthereum:  {ID: IDEthereum, Name: "ethereum", Family: FamilyEVM},
	IDBSC:       {ID: IDBSC, Name: "bsc", Family: FamilyEVM},
	IDPolygon:   {ID: IDPolygon, Name: "polygon", Family: FamilyEVM},
	IDAvalanche: {ID: IDAvalanche, Name: "avalanche", Family: FamilyEVM},
	IDFantom:    {ID: IDFantom, Name: "fantom", Family: FamilyEVM},
	IDArbitrum:  {ID: IDArbitrum, Name: "arbitrum", Family: FamilyEVM},
	IDOptimism:  {ID: IDOptimism, Name: "optimism", Family: FamilyEVM},
	IDBase:      {ID: IDBase, Name: "base", Family: FamilyEVM},
}

// Lookup returns the chain info for a bridge chain id.
func Lookup(id ID) (Info, bool) {
	info, ok := registry[id]
	return info, ok
}

// ByName resolves a chain by its lowercase name, for config and URL parameters.
func ByName(name string) (Info, bool) {
	for _, info := range registry {
		if info.Name == name {
			return info, true
		}
	}
	return Info{}, false
}

// Register adds a chain that is not part of the built-in set. Config loading
// uses it for custom EVM deployments so routes can point at them.
func Register(info Info) error {
	if info.Name == "" {
		return fmt.Errorf("chain %d: name is required", info.ID)
	}
	if info.Family != FamilyEVM && info.Family != FamilySolana {
		return fmt.Errorf("chain %d: unknown family %q", info.ID, info.Family)
	}
	if existing, ok := registry[info.ID]; ok && existing != info {
		return fmt.Errorf("chain %d already registered as %q", info.ID, existing.Name)
	}
	registry[info.ID] = info
	return nil
}
