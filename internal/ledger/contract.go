package ledger

import (
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// ABI of the notary contract. Kept embedded: the backend only ever talks to
// this one contract shape, deployed once per organization.
const notaryABI = `[
	{"type":"function","name":"originalHash","stateMutability":"view",
	 "inputs":[{"name":"idHash","type":"bytes32"}],
	 "outputs":[{"name":"","type":"bytes32"}]},
	{"type":"function","name":"timestamps","stateMutability":"view",
	 "inputs":[{"name":"key","type":"bytes32"}],
	 "outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"fileTimestamps","stateMutability":"view",
	 "inputs":[{"name":"documentHash","type":"bytes32"}],
	 "outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"storeDocumentHash","stateMutability":"nonpayable",
	 "inputs":[{"name":"idHash","type":"bytes32"},{"name":"documentHash","type":"bytes32"}],
	 "outputs":[]},
	{"type":"event","name":"DocumentNotarized","anonymous":false,
	 "inputs":[
		{"name":"sender","type":"address","indexed":true},
		{"name":"idHash","type":"bytes32","indexed":true},
		{"name":"documentHash","type":"bytes32","indexed":false},
		{"name":"timestamp","type":"uint256","indexed":false}]}
]`

const eventDocumentNotarized = "DocumentNotarized"

func parseNotaryABI() (abi.ABI, error) {
	parsed, err := abi.JSON(strings.NewReader(notaryABI))
	if err != nil {
		return abi.ABI{}, errors.New("failed to parse the notary abi: " + err.Error())
	}

	if _, ok := parsed.Events[eventDocumentNotarized]; !ok {
		return abi.ABI{}, errors.New("notary abi is missing the " + eventDocumentNotarized + " event")
	}

	return parsed, nil
}
