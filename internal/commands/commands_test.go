package commands

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ledger/internal/accounts"
	"github.com/cleared-dev/ledger/internal/model"
)

func run(args ...string) (string, error) {
	var out, errOut bytes.Buffer
	err := Execute(args, &out, &errOut)
	return out.String(), err
}

// ledgerDir initializes a ledger with company Acme and the default chart and
// returns a runner scoped to it.
func ledgerDir(t *testing.T) (string, func(args ...string) (string, error)) {
	t.Helper()
	dir := t.TempDir()
	out, err := run("init", dir, "--name", "Acme")
	require.NoError(t, err)
	require.Contains(t, out, "Created company \"Acme\"")

	cfg := filepath.Join(dir, "ledger.yaml")
	return dir, func(args ...string) (string, error) {
		return run(append([]string{"--config", cfg, "--company", "Acme"}, args...)...)
	}
}

func TestVersion(t *testing.T) {
	out, err := run("version")
	require.NoError(t, err)
	assert.Contains(t, out, "ledger dev")
}

func TestInit(t *testing.T) {
	dir, ledger := ledgerDir(t)

	for _, name := range []string{"ledger.yaml", "ledger.db", "import"} {
		_, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
	}

	out, err := ledger("account", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "1110")
	assert.Contains(t, out, "Owner's Capital")

	_, err = run("init", dir)
	assert.ErrorContains(t, err, "already exists")
}

func TestCompanyRequired(t *testing.T) {
	dir, _ := ledgerDir(t)
	_, err := run("--config", filepath.Join(dir, "ledger.yaml"), "account", "list")
	assert.ErrorContains(t, err, "--company is required")

	_, err = run("--config", filepath.Join(dir, "ledger.yaml"), "--company", "Nope", "account", "list")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestCompanyCommands(t *testing.T) {
	dir, _ := ledgerDir(t)
	cfg := filepath.Join(dir, "ledger.yaml")

	_, err := run("--config", cfg, "company", "create", "Globex")
	require.NoError(t, err)
	_, err = run("--config", cfg, "company", "create", "Globex")
	var dup model.UniqueConstraintViolation
	assert.ErrorAs(t, err, &dup)

	out, err := run("--config", cfg, "company", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Acme")
	assert.Contains(t, out, "Globex")

	_, err = run("--config", cfg, "company", "delete", "Globex")
	require.NoError(t, err)
	out, err = run("--config", cfg, "company", "list")
	require.NoError(t, err)
	assert.NotContains(t, out, "Globex")
}

func TestPostShowAndReports(t *testing.T) {
	_, ledger := ledgerDir(t)

	out, err := ledger("tx", "post", "--date", "2024-01-05", "--notes", "seed capital",
		"--line", "1110:100:", "--line", "3100::100:owner")
	require.NoError(t, err)
	assert.Contains(t, out, "Posted TX-000001")

	out, err = ledger("tx", "show", "TX-000001")
	require.NoError(t, err)
	assert.Contains(t, out, "seed capital")
	assert.Contains(t, out, "1110")
	assert.Contains(t, out, "$100.00")
	assert.Contains(t, out, "owner")

	out, err = ledger("account", "balance", "1000")
	require.NoError(t, err)
	assert.Contains(t, out, "$100.00")

	out, err = ledger("account", "activity", "1100")
	require.NoError(t, err)
	assert.Contains(t, out, "TX-000001")
	assert.Contains(t, out, "2024-01-05")

	out, err = ledger("account", "tree")
	require.NoError(t, err)
	assert.Contains(t, out, "1000/")

	out, err = ledger("account", "trial-balance")
	require.NoError(t, err)
	assert.Contains(t, out, "balanced")

	out, err = ledger("tx", "list")
	require.NoError(t, err)
	assert.Regexp(t, `TX-000001\s+2024-01-05\s+2\s+\$100\.00\s+seed capital`, out)
}

func TestPostRejectsInvalid(t *testing.T) {
	_, ledger := ledgerDir(t)

	_, err := ledger("tx", "post", "--line", "1110:100:", "--line", "3100::90")
	var balErr model.BalanceError
	assert.ErrorAs(t, err, &balErr)

	_, err = ledger("tx", "post", "--line", "1110:100:")
	var countErr model.InsufficientLinesError
	assert.ErrorAs(t, err, &countErr)

	_, err = ledger("tx", "post", "--line", "9999:100:", "--line", "3100::100")
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = ledger("tx", "post", "--line", "1110:abc:", "--line", "3100::100")
	var verr model.ValidationError
	assert.ErrorAs(t, err, &verr)

	out, err := ledger("tx", "list")
	require.NoError(t, err)
	assert.NotContains(t, out, "TX-")
}

func TestTxEditAndDelete(t *testing.T) {
	_, ledger := ledgerDir(t)

	_, err := ledger("tx", "post", "--date", "2024-01-05", "--line", "1110:100:", "--line", "3100::100")
	require.NoError(t, err)

	_, err = ledger("tx", "edit", "TX-000001", "--notes", "revised", "--line", "1=1110:250:", "--line", "2=3100::250")
	require.NoError(t, err)

	out, err := ledger("tx", "show", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "revised")
	assert.Contains(t, out, "$250.00")
	assert.Contains(t, out, "2024-01-05", "date kept when not given")

	_, err = ledger("tx", "delete", "TX-000001")
	require.NoError(t, err)
	_, err = ledger("tx", "show", "TX-000001")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestQuickAndBankImport(t *testing.T) {
	dir, ledger := ledgerDir(t)

	_, err := ledger("quick", "create", "deposit", "--from", "1110", "--to", "3100")
	require.NoError(t, err)
	_, err = ledger("quick", "create", "withdrawal", "--from", "1110", "--from-charge", "credit", "--to", "3100", "--to-charge", "debit")
	require.NoError(t, err)
	_, err = ledger("quick", "create", "broken", "--from", "1110", "--to", "3100", "--to-charge", "debit")
	var balErr model.BalanceError
	assert.ErrorAs(t, err, &balErr)
	_, err = ledger("quick", "create", "deposit", "--from", "1110", "--to", "3100")
	var dup model.UniqueConstraintViolation
	assert.ErrorAs(t, err, &dup)

	out, err := ledger("quick", "submit", "deposit", "40", "--date", "2024-02-01", "--preview")
	require.NoError(t, err)
	assert.Contains(t, out, "$40.00")
	out, err = ledger("tx", "list")
	require.NoError(t, err)
	assert.NotContains(t, out, "TX-", "preview posts nothing")

	csv := "Details,Posting Date,Description,Amount,Type,Balance,Check or Slip #\n" +
		"CREDIT,01/15/2025,ACME INVOICE,3500.00,ACH_CREDIT,3500.00,\n" +
		"DEBIT,01/16/2025,GITHUB,-4.00,ACH_DEBIT,3496.00,\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "import", "bank.csv"), []byte(csv), 0o644))

	out, err = ledger("import", "--deposit", "deposit", "--withdrawal", "withdrawal")
	require.NoError(t, err)
	assert.Contains(t, out, "posted 2, skipped 0")

	_, err = os.Stat(filepath.Join(dir, "import", "processed", "bank.csv"))
	require.NoError(t, err)

	out, err = ledger("account", "balance", "1110")
	require.NoError(t, err)
	assert.Contains(t, out, "$3,496.00")

	out, err = ledger("import", "--deposit", "deposit", "--withdrawal", "withdrawal")
	require.NoError(t, err)
	assert.Contains(t, out, "No CSV files")
}

func TestRecurring(t *testing.T) {
	_, ledger := ledgerDir(t)

	_, err := ledger("tx", "post", "--date", "2024-01-01", "--notes", "rent", "--line", "3100:900:", "--line", "1110::900")
	require.NoError(t, err)

	_, err = ledger("recurring", "create", "rent", "--from", "TX-000001")
	require.NoError(t, err)

	out, err := ledger("recurring", "show", "rent")
	require.NoError(t, err)
	assert.Contains(t, out, "$900.00")

	out, err = ledger("recurring", "post", "rent", "--date", "2024-02-01")
	require.NoError(t, err)
	assert.Contains(t, out, "Posted TX-000002")

	_, err = ledger("recurring", "edit", "rent", "--line", "3100:950:", "--line", "1110::900")
	var balErr model.BalanceError
	assert.ErrorAs(t, err, &balErr)

	_, err = ledger("recurring", "edit", "rent", "--name", "office rent")
	require.NoError(t, err)
	out, err = ledger("recurring", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "office rent")

	_, err = ledger("recurring", "delete", "office rent")
	require.NoError(t, err)
	_, err = ledger("recurring", "post", "office rent")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestAttributes(t *testing.T) {
	_, ledger := ledgerDir(t)

	_, err := ledger("tx", "post", "--line", "1110:10:", "--line", "3100::10")
	require.NoError(t, err)

	_, err = ledger("attribute", "create", "project", "--kind", "choice", "--choice", "alpha", "--choice", "beta")
	require.NoError(t, err)

	_, err = ledger("attribute", "set", "1", "project", "alpha")
	require.NoError(t, err)
	_, err = ledger("attribute", "set", "1", "project", "gamma")
	var verr model.ValidationError
	assert.ErrorAs(t, err, &verr)

	out, err := ledger("attribute", "show", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "project")
	assert.Contains(t, out, "alpha")
}

func TestAccountLifecycle(t *testing.T) {
	dir, ledger := ledgerDir(t)

	_, err := ledger("account", "create", "1150", "--kind", "asset", "--parent", "1100", "--leaf",
		"--description", "Petty Cash", "--opening-date", "2024-01-01", "--opening-balance", "25")
	require.NoError(t, err)

	_, err = ledger("account", "create", "1160", "--kind", "liability", "--parent", "1100", "--leaf")
	var verr model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "kind", verr.Field)

	_, err = ledger("account", "create", strings.Repeat("9", 256), "--kind", "asset")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "key", verr.Field)

	_, err = ledger("account", "update", "1150", "--description", "Cash Box")
	require.NoError(t, err)
	out, err := ledger("account", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Cash Box")
	assert.Contains(t, out, "$25.00")

	out, err = ledger("account", "activity", "1150")
	require.NoError(t, err)
	assert.Contains(t, out, "Opening Balance")

	_, err = ledger("tx", "post", "--line", "1150:5:", "--line", "3100::5")
	require.NoError(t, err)
	_, err = ledger("account", "delete", "1100")
	var protected model.ProtectedDeleteError
	assert.ErrorAs(t, err, &protected)

	exported := filepath.Join(dir, "chart.csv")
	_, err = ledger("account", "export", exported)
	require.NoError(t, err)

	cfg := filepath.Join(dir, "ledger.yaml")
	_, err = run("--config", cfg, "company", "create", "Globex")
	require.NoError(t, err)
	out, err = run("--config", cfg, "--company", "Globex", "account", "import", exported)
	require.NoError(t, err)
	assert.Contains(t, out, fmt.Sprintf("Imported %d accounts", len(accounts.DefaultChart())+1))
}
