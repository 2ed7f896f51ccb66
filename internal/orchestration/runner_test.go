package orchestration_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/imamik/cephrig/internal/cluster"
	"github.com/imamik/cephrig/internal/config"
	"github.com/imamik/cephrig/internal/health"
	"github.com/imamik/cephrig/internal/hostvars"
	"github.com/imamik/cephrig/internal/metrics"
	"github.com/imamik/cephrig/internal/orchestration"
	"github.com/imamik/cephrig/internal/provisioning"
	"github.com/imamik/cephrig/internal/provisioning/archive"
	"github.com/imamik/cephrig/internal/provisioning/provisioningtest"
	"github.com/imamik/cephrig/internal/remote"
	cephtest "github.com/imamik/cephrig/internal/testing"
	"github.com/imamik/cephrig/internal/topology"
)

type memoryStore struct {
	mu      sync.Mutex
	objects map[string]string
}

func (s *memoryStore) EnsureBucket(context.Context, string) error { return nil }

func (s *memoryStore) PutObject(_ context.Context, bucket, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[bucket+"/"+key] = string(data)
	return nil
}

func (s *memoryStore) keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		keys = append(keys, k)
	}
	return keys
}

func gatherFacts(context.Context, remote.Remote) (*remote.Facts, error) {
	return &remote.Facts{Interface: "eth0", CIDR: "10.0.0.0/24", PackageType: remote.PackageTypeDeb}, nil
}

func listDevices(context.Context, remote.Remote) ([]string, error) {
	return []string{"/dev/vdb", "/dev/vdc"}, nil
}

func counterValue(reg *prometheus.Registry, name string, labels map[string]string) float64 {
	families, err := reg.Gather()
	Expect(err).NotTo(HaveOccurred())
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	metric:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue metric
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

var _ = Describe("Runner", func() {
	var (
		ctx       context.Context
		cancel    context.CancelFunc
		installer *cephtest.FakeRemote
		osdHost   *cephtest.FakeRemote
		c         *cluster.Cluster
		cfg       *config.Config
		store     *memoryStore
		rec       *metrics.Recorder
		observer  *provisioningtest.Observer
	)

	newRunner := func() *orchestration.Runner {
		return orchestration.NewRunner(cfg,
			orchestration.WithObserver(observer),
			orchestration.WithMetrics(rec),
			orchestration.WithObjectStore(store),
			orchestration.WithTimeouts(&config.Timeouts{
				Playbook:       time.Minute,
				HealthInterval: time.Millisecond,
				HealthAttempts: 2,
			}),
			orchestration.WithFactsGatherer(gatherFacts),
			orchestration.WithHostVarsOptions(hostvars.WithDeviceLister(listDevices)),
		)
	}

	BeforeEach(func() {
		ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
		DeferCleanup(cancel)

		installer = cephtest.NewFakeRemote("host-a").
			On("ansible-playbook", "PLAY RECAP\nhost-a : ok=12 failed=0\n").
			On("ceph health", "HEALTH_OK")
		osdHost = cephtest.NewFakeRemote("host-b")
		c = cephtest.NewCluster(
			cephtest.NewHost(osdHost, "osd.0", "osd.1"),
			cephtest.NewHost(installer, "mon.a"),
		)

		cfg = cephtest.NewConfigBuilder().
			WithTarget("host-a", "mon.a").
			WithTarget("host-b", "osd.0", "osd.1").
			WithRHBuild(true).
			Build()
		cfg.Archive = config.ArchiveConfig{
			Endpoint: "http://s3.test:9000",
			Region:   "us-east-1",
			Bucket:   "runs",
			Prefix:   "ci",
		}
		cfg.Metrics.Textfile = filepath.Join(GinkgoT().TempDir(), "cephrig.prom")
		Expect(cfg.Validate()).To(Succeed())

		store = &memoryStore{objects: map[string]string{}}
		rec = metrics.New()
		observer = provisioningtest.NewObserver()
	})

	Context("when the playbook succeeds", func() {
		It("runs every phase and archives the artifacts", func() {
			state, err := newRunner().Run(ctx, c)
			Expect(err).NotTo(HaveOccurred())

			By("executing ceph-ansible on the first monitor")
			Expect(installer.Count("ansible-playbook")).To(Equal(1))
			Expect(osdHost.Count("ansible-playbook")).To(BeZero())
			Expect(state.PlaybookOutput).To(ContainSubstring("PLAY RECAP"))

			By("recording the converged health")
			Expect(state.HealthPolled).To(BeTrue())
			Expect(state.HealthStatus).To(Equal(string(health.StatusOK)))

			By("rendering the OSD devices into the inventory")
			Expect(string(state.InventoryArtifact.Content)).To(ContainSubstring(`host-b devices='["/dev/vdb","/dev/vdc"]'`))

			By("archiving the documents and the playbook log")
			Expect(store.keys()).To(ConsistOf(
				"runs/"+archive.Key("ci", "test-run", state.InventoryArtifact.Name()),
				"runs/"+archive.Key("ci", "test-run", state.PlaybookArtifact.Name()),
				"runs/"+archive.Key("ci", "test-run", archive.LogObject),
			))

			By("removing the local files")
			for _, a := range state.Artifacts.All() {
				_, statErr := os.Stat(a.Path)
				Expect(os.IsNotExist(statErr)).To(BeTrue(), a.Path)
			}

			By("exporting metrics")
			Expect(counterValue(rec.Registry(), "cephrig_runs_total", map[string]string{"result": "success"})).To(Equal(1.0))
			Expect(counterValue(rec.Registry(), "cephrig_health_checks_total", map[string]string{"status": "HEALTH_OK"})).To(Equal(1.0))
			Expect(cfg.Metrics.Textfile).To(BeAnExistingFile())
		})

		It("skips the health poll when wait-for-health is off", func() {
			off := false
			cfg.CephAnsible.WaitForHealth = &off

			state, err := newRunner().Run(ctx, c)
			Expect(err).NotTo(HaveOccurred())
			Expect(state.HealthPolled).To(BeFalse())
			Expect(installer.Count("ceph health")).To(BeZero())
		})
	})

	Context("when every host failed", func() {
		BeforeEach(func() {
			installer.OnExit("ansible-playbook", "fatal: [host-a]\n"+topology.FailureMarker+"\n", 2)
		})

		It("fails the run but still archives the playbook log", func() {
			state, err := newRunner().Run(ctx, c)

			var orchErr *topology.OrchestrationError
			Expect(errors.As(err, &orchErr)).To(BeTrue())
			Expect(err.Error()).To(HavePrefix("execute phase failed"))
			Expect(installer.Count("ceph health")).To(BeZero())

			Expect(store.objects).To(HaveKeyWithValue(
				"runs/"+archive.Key("ci", "test-run", archive.LogObject),
				ContainSubstring(topology.FailureMarker),
			))
			Expect(state.Artifacts.All()).To(HaveLen(2))
			Expect(counterValue(rec.Registry(), "cephrig_runs_total", map[string]string{"result": "failure"})).To(Equal(1.0))
		})
	})

	Context("when the cluster does not converge", func() {
		BeforeEach(func() {
			installer.On("ceph health", "HEALTH_ERR 1 mons down")
		})

		It("gives up after the attempt budget", func() {
			state, err := newRunner().Run(ctx, c)
			Expect(err).To(MatchError(health.ErrHealthTimeout))
			Expect(state.HealthStatus).To(Equal(string(health.StatusErr)))
			Expect(installer.Count("ceph health")).To(Equal(2))
			Expect(counterValue(rec.Registry(), "cephrig_health_checks_total", map[string]string{"status": "HEALTH_ERR"})).To(Equal(2.0))
		})
	})

	Context("when the configuration has no monitor", func() {
		It("stops in validation before touching any host", func() {
			cfg.Targets = []config.Target{{Hostname: "host-b", Roles: []string{"osd.0"}}}

			_, err := newRunner().Run(ctx, cephtest.NewCluster(cephtest.NewHost(osdHost, "osd.0")))
			Expect(err).To(MatchError(ContainSubstring("validation phase failed")))
			Expect(osdHost.Commands()).To(BeEmpty())
			Expect(observer.Events(provisioning.EventValidationError)).NotTo(BeEmpty())
		})
	})

	Context("when the archive has no endpoint", func() {
		It("stops in validation before touching any host", func() {
			cfg.Archive.Endpoint = ""

			_, err := newRunner().Run(ctx, c)
			Expect(err).To(MatchError(ContainSubstring("archive endpoint is required")))
			Expect(installer.Commands()).To(BeEmpty())
			Expect(osdHost.Commands()).To(BeEmpty())
			Expect(store.keys()).To(BeEmpty())
		})
	})

	Describe("Documents", func() {
		It("renders the inventory and playbook without running them", func() {
			state, err := newRunner().Documents(ctx, c)
			Expect(err).NotTo(HaveOccurred())

			Expect(state.Inventory.Groups()).To(Equal([]string{"mons", "osds"}))
			Expect(string(state.PlaybookArtifact.Content)).To(HavePrefix("---\n"))
			Expect(installer.Commands()).To(BeEmpty())
			Expect(store.keys()).To(BeEmpty())
		})
	})

	Describe("Health", func() {
		It("polls even when wait-for-health is off", func() {
			off := false
			cfg.CephAnsible.WaitForHealth = &off

			status, err := newRunner().Health(ctx, c)
			Expect(err).NotTo(HaveOccurred())
			Expect(status).To(Equal(health.StatusOK))
			Expect(installer.Count("ceph osd tree")).To(Equal(1))
		})
	})

	Describe("Packages", func() {
		It("rejects unknown operations", func() {
			err := newRunner().Packages(ctx, c, "reinstall")
			Expect(err).To(MatchError(ContainSubstring(`unknown package operation "reinstall"`)))
		})

		It("removes the sources list on every host", func() {
			Expect(newRunner().Packages(ctx, c, "remove-sources")).To(Succeed())
			for _, r := range []*cephtest.FakeRemote{installer, osdHost} {
				Expect(r.Count("/etc/apt/sources.list.d/ceph.list")).To(BeNumerically(">=", 1))
			}
			Expect(counterValue(rec.Registry(), "cephrig_package_operations_total",
				map[string]string{"operation": "remove-sources", "result": "success"})).To(Equal(2.0))
		})
	})
})
