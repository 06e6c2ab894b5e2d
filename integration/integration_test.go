package integration

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/zktally/contracts/audit"
	"go.dedis.ch/zktally/contracts/proofs"
	"go.dedis.ch/zktally/contracts/tally"
	"go.dedis.ch/zktally/core/access"
	"go.dedis.ch/zktally/core/clock"
	"go.dedis.ch/zktally/core/election"
	"go.dedis.ch/zktally/core/election/static"
	"go.dedis.ch/zktally/core/store/mem"
	"go.dedis.ch/zktally/crypto/homomorphic"
	"go.dedis.ch/zktally/crypto/zkp"
)

const (
	electionID = election.ID(1)
	numVoters  = 50
	root       = access.Identity("root")
)

// Start an election of 50 voters, verify their proofs in batches, publish the
// encrypted tally and audit it.
func TestIntegration_Election(t *testing.T) {
	db := mem.NewStore()
	c := clock.NewManual(10)

	voters := make([]access.Identity, numVoters)
	for i := range voters {
		voters[i] = access.Identity(fmt.Sprintf("voter%d", i))
	}

	registry := static.NewRegistry(c, static.Election{
		ID:     electionID,
		Start:  1,
		End:    50,
		Voters: voters,
	})

	secret, pubkey := homomorphic.GenerateKey()

	proofsEngine := proofs.NewContract(db, c, registry, registry, proofs.WithVerifier(zkp.NewDLEQ()))
	tallyEngine := tally.NewContract(db, c, registry, proofsEngine,
		tally.WithScheme(homomorphic.NewElGamal(pubkey)))
	auditEngine := audit.NewContract(db, c, registry, tallyEngine, proofsEngine)

	require.NoError(t, proofsEngine.ConfigureAuthority(root, root))
	require.NoError(t, tallyEngine.SetAdmin(root, root))
	require.NoError(t, auditEngine.SetAdmin(root, root))

	prover := zkp.NewDLEQProver()

	entries := make([]proofs.Entry, numVoters)
	fingerprints := make([][]byte, numVoters)

	for i, voter := range voters {
		cand := election.Candidate(i%2 + 1)

		proof, err := prover.Prove(uint32(cand))
		require.NoError(t, err)

		entries[i] = proofs.Entry{
			Voter:      voter,
			Election:   electionID,
			Proof:      proofs.Proof{Candidate: cand, Bytes: proof},
			Commitment: bytes.Repeat([]byte{byte(i)}, proofs.CommitmentSize),
		}

		fingerprints[i] = proofsEngine.Fingerprint(voter, electionID, entries[i].Commitment)
	}

	for i := 0; i < numVoters; i += 10 {
		res, err := proofsEngine.BatchVerifyProofs(entries[i : i+10])
		require.NoError(t, err)
		require.Equal(t, 10, res.Verified)

		for j, receipt := range res.Receipts {
			require.Equal(t, fingerprints[i+j], receipt.Fingerprint)
		}
	}

	counts := proofsEngine.GetElectionTally(electionID)
	require.Equal(t, uint64(numVoters), counts.Total)
	require.Equal(t, uint64(25), counts.Counts[1])
	require.Equal(t, uint64(25), counts.Counts[2])

	// An audit is not possible before the publication.
	_, err := auditEngine.PerformAudit(root, electionID, fingerprints)
	require.ErrorIs(t, err, audit.ErrNotPublished)

	require.NoError(t, tallyEngine.InitializeElectionTally(root, electionID, []election.Candidate{1, 2}))

	err = tallyEngine.AggregateCandidateProofs(root, electionID, 3, 1)
	require.ErrorIs(t, err, tally.ErrUnknownCandidate)

	require.NoError(t, tallyEngine.AggregateCandidateProofs(root, electionID, 1, 25))
	require.NoError(t, tallyEngine.AggregateCandidateProofs(root, electionID, 2, 25))
	require.NoError(t, tallyEngine.PublishEncryptedTally(root, electionID))

	t1, found := tallyEngine.GetElectionTally(electionID)
	require.True(t, found)

	total, err := homomorphic.Decrypt(secret, t1.Result, numVoters)
	require.NoError(t, err)
	require.Equal(t, uint64(numVoters), total)

	require.True(t, tallyEngine.ValidateTallyIntegrity(electionID).Passed)

	// Two unknown fingerprints out of 50 keep the match rate above the
	// minimum.
	submitted := append([][]byte{}, fingerprints[:48]...)
	submitted = append(submitted, []byte("unknown#1"), []byte("unknown#2"))

	rec, err := auditEngine.PerformAudit(root, electionID, submitted)
	require.NoError(t, err)
	require.Equal(t, uint64(96), rec.MatchRate)
	require.Equal(t, []uint64{25, 25}, rec.FinalResults)

	disputeID, err := auditEngine.RaiseDispute(voters[0], electionID, "missing ballot",
		make([]byte, audit.EvidenceSize), 9)
	require.NoError(t, err)
	require.Equal(t, uint64(1), disputeID)

	require.NoError(t, auditEngine.ResolveDispute(root, electionID, disputeID, audit.StatusAccepted))

	dispute, found := auditEngine.GetDispute(electionID, disputeID)
	require.True(t, found)
	require.Equal(t, audit.StatusAccepted, dispute.Status)

	eligible, err := auditEngine.CheckAuditEligibility(voters[3], electionID)
	require.NoError(t, err)
	require.True(t, eligible)

	eligible, err = auditEngine.CheckAuditEligibility("mallory", electionID)
	require.NoError(t, err)
	require.False(t, eligible)

	c.Advance(audit.DefaultConfig().TimeoutWindow + 1)

	_, err = auditEngine.CheckAuditEligibility(voters[3], electionID)
	require.ErrorIs(t, err, audit.ErrAuditWindowClosed)
}

// A voter who already voted cannot vote again and the batch that contains
// the second vote leaves the counts untouched.
func TestIntegration_DoubleVote(t *testing.T) {
	db := mem.NewStore()
	c := clock.NewManual(5)

	registry := static.NewRegistry(c, static.Election{ID: electionID, Start: 1})

	engine := proofs.NewContract(db, c, registry, registry)
	require.NoError(t, engine.ConfigureAuthority(root, root))

	proof, err := zkp.NewDigestProver([]byte("integration")).Prove(1)
	require.NoError(t, err)

	entry := proofs.Entry{
		Voter:      "alice",
		Election:   electionID,
		Proof:      proofs.Proof{Candidate: 1, Bytes: proof},
		Commitment: make([]byte, proofs.CommitmentSize),
	}

	res, err := engine.BatchVerifyProofs([]proofs.Entry{entry})
	require.NoError(t, err)
	require.Equal(t, 1, res.Verified)

	other := entry
	other.Voter = "bob"

	res, err = engine.BatchVerifyProofs([]proofs.Entry{other, entry})
	require.ErrorIs(t, err, proofs.ErrAlreadyVoted)
	require.Equal(t, 1, res.Verified)

	require.False(t, engine.HasVoterVoted("bob", electionID))
	require.Equal(t, uint64(1), engine.GetTotalVerifiedForElection(electionID))
}
