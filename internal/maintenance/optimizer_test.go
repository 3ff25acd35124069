package maintenance_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"

	"github.com/frahmantamala/practice-management/internal/maintenance"
	"github.com/jmoiron/sqlx"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var _ = Describe("ResolveEngine", func() {
	DescribeTable("driver names",
		func(driver string, want maintenance.Engine) {
			got, err := maintenance.ResolveEngine(driver)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(want))
		},
		Entry("sqlite", "sqlite", maintenance.EngineSQLite),
		Entry("sqlite3", "sqlite3", maintenance.EngineSQLite),
		Entry("postgres", "postgres", maintenance.EnginePostgres),
		Entry("pgx", "PGX", maintenance.EnginePostgres),
	)

	It("should reject anything else", func() {
		_, err := maintenance.ResolveEngine("mysql")
		Expect(errors.Is(err, maintenance.ErrUnsupportedEngine)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("unsupported database engine"))
	})
})

var _ = Describe("Options", func() {
	It("should default to analyze", func() {
		Expect(maintenance.Options{}.Steps()).To(Equal([]maintenance.Step{maintenance.StepAnalyze}))
	})

	It("should run everything in order for all", func() {
		Expect(maintenance.Options{All: true, Cache: true}.Steps()).To(Equal([]maintenance.Step{
			maintenance.StepFull, maintenance.StepAnalyze, maintenance.StepCache, maintenance.StepIntegrity,
		}))
	})

	It("should keep the fixed order for combined flags", func() {
		Expect(maintenance.Options{Cache: true, Full: true}.Steps()).To(Equal([]maintenance.Step{
			maintenance.StepFull, maintenance.StepCache,
		}))
	})
})

var _ = Describe("SessionDSN", func() {
	It("should append the connection pragmas", func() {
		Expect(maintenance.SessionDSN("practice.db")).To(Equal("practice.db?_synchronous=NORMAL&_cache_size=-64000"))
		Expect(maintenance.SessionDSN("file:practice.db?cache=shared")).To(Equal("file:practice.db?cache=shared&_synchronous=NORMAL&_cache_size=-64000"))
	})

	It("should keep parameters the source already sets", func() {
		Expect(maintenance.SessionDSN("practice.db?_cache_size=-2000")).To(Equal("practice.db?_cache_size=-2000&_synchronous=NORMAL"))
	})
})

var _ = Describe("Optimizer", func() {
	var (
		sqlDB *sql.DB
		db    *sqlx.DB
		ctx   context.Context
	)

	BeforeEach(func() {
		path := filepath.Join(GinkgoT().TempDir(), "practice.db")
		gdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err = gdb.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)

		Expect(gdb.Exec("CREATE TABLE notes (id INTEGER PRIMARY KEY, body TEXT)").Error).To(Succeed())
		for i := 0; i < 50; i++ {
			Expect(gdb.Exec("INSERT INTO notes (body) VALUES (?)", "some text to take up space").Error).To(Succeed())
		}
		Expect(gdb.Exec("DELETE FROM notes WHERE id % 2 = 0").Error).To(Succeed())

		db = sqlx.NewDb(sqlDB, "sqlite3")
		ctx = context.Background()
		DeferCleanup(func() { _ = sqlDB.Close() })
	})

	It("should run analyze by default", func() {
		opt := maintenance.NewOptimizer(db, maintenance.EngineSQLite, discardLogger())
		report, err := opt.Run(ctx, maintenance.Options{})
		Expect(err).NotTo(HaveOccurred())
		Expect(report.Lines).To(HaveLen(1))
		Expect(report.Lines[0].Step).To(Equal(maintenance.StepAnalyze))
		Expect(report.Lines[0].Outcome).To(Equal(maintenance.OutcomePass))
		Expect(report.Failed()).To(BeFalse())
	})

	It("should run every step for all", func() {
		opt := maintenance.NewOptimizer(db, maintenance.EngineSQLite, discardLogger())
		report, err := opt.Run(ctx, maintenance.Options{All: true})
		Expect(err).NotTo(HaveOccurred())
		Expect(report.Lines).To(HaveLen(4))
		for _, l := range report.Lines {
			Expect(l.Outcome).To(Equal(maintenance.OutcomePass), l.String())
		}
		Expect(report.Lines[0].Detail).To(ContainSubstring("VACUUM completed"))
		Expect(report.Lines[2].Detail).To(ContainSubstring("journal_mode=wal (stored in the file)"))
		Expect(report.Lines[2].Detail).To(ContainSubstring("(this connection only)"))
		Expect(report.Lines[3].Detail).To(Equal("integrity check ok"))
		Expect(report.String()).To(ContainSubstring("[PASS] integrity"))

		var syncMode int
		Expect(db.GetContext(ctx, &syncMode, "PRAGMA synchronous")).To(Succeed())
		Expect(syncMode).To(Equal(1))
	})

	It("should skip sqlite-only steps on postgres", func() {
		opt := maintenance.NewOptimizer(db, maintenance.EnginePostgres, discardLogger())
		report, err := opt.Run(ctx, maintenance.Options{Cache: true})
		Expect(err).NotTo(HaveOccurred())
		Expect(report.Lines).To(HaveLen(1))
		Expect(report.Lines[0].Outcome).To(Equal(maintenance.OutcomeSkip))
	})

	It("should stop at the first failure", func() {
		Expect(sqlDB.Close()).To(Succeed())

		opt := maintenance.NewOptimizer(db, maintenance.EngineSQLite, discardLogger())
		report, err := opt.Run(ctx, maintenance.Options{Full: true, Analyze: true})
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(HavePrefix("full step"))
		Expect(report.Failed()).To(BeTrue())
		Expect(report.Lines).To(HaveLen(1))
		Expect(report.Lines[0].Step).To(Equal(maintenance.StepFull))
	})
})
