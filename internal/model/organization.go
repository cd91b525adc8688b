package model

// Organization is the tenant owning users and notarized documents.
// ChainAddress is the on-chain account the organization's transactions are
// sent from; ContractAddress points at its deployed notary contract.
// DeployBlock is the block the contract was deployed in, used as the lower
// bound when scanning events.
type Organization struct {
	ID              string
	Name            string
	ChainAddress    string
	ContractAddress string
	DeployBlock     uint64
}
